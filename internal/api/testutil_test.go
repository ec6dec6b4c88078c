package api

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"

	"github.com/avelinov/parley/internal/cache"
	"github.com/avelinov/parley/internal/models"
	"github.com/avelinov/parley/internal/snowflake"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID int64) {
	c.Set("user_id", userID)
}

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

func newTestCacheClient(t *testing.T) *cache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("creating test redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestPermCache(t *testing.T) *cache.PermissionCache {
	t.Helper()
	return cache.NewPermissionCache(newTestCacheClient(t), time.Minute)
}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockUserRepo implements database.UserRepository.
type mockUserRepo struct {
	CreateFn        func(ctx context.Context, user *models.User) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, nil
}

// mockGuildRepo implements database.GuildRepository.
type mockGuildRepo struct {
	CreateWithDefaultsFn func(ctx context.Context, guild *models.Guild, everyone *models.Role, channel *models.Channel, owner *models.Member) error
	GetByIDFn            func(ctx context.Context, id int64) (*models.Guild, error)
	DeleteFn             func(ctx context.Context, id int64) error
	GetByUserIDFn        func(ctx context.Context, userID int64) ([]models.Guild, error)
}

func (m *mockGuildRepo) CreateWithDefaults(ctx context.Context, guild *models.Guild, everyone *models.Role, channel *models.Channel, owner *models.Member) error {
	if m.CreateWithDefaultsFn != nil {
		return m.CreateWithDefaultsFn(ctx, guild, everyone, channel, owner)
	}
	return nil
}

func (m *mockGuildRepo) GetByID(ctx context.Context, id int64) (*models.Guild, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockGuildRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockGuildRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Guild, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, nil
}

// mockChannelRepo implements database.ChannelRepository.
type mockChannelRepo struct {
	CreateFn       func(ctx context.Context, channel *models.Channel) error
	GetByIDFn      func(ctx context.Context, id int64) (*models.Channel, error)
	GetByGuildIDFn func(ctx context.Context, guildID int64) ([]models.Channel, error)
	DeleteFn       func(ctx context.Context, id int64) error
}

func (m *mockChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, channel)
	}
	return nil
}

func (m *mockChannelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockChannelRepo) GetByGuildID(ctx context.Context, guildID int64) ([]models.Channel, error) {
	if m.GetByGuildIDFn != nil {
		return m.GetByGuildIDFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockChannelRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockRoleRepo implements database.RoleRepository.
type mockRoleRepo struct {
	CreateFn          func(ctx context.Context, role *models.Role) error
	GetByIDFn         func(ctx context.Context, id int64) (*models.Role, error)
	GetByGuildIDFn    func(ctx context.Context, guildID int64) ([]models.Role, error)
	GetByMemberFn     func(ctx context.Context, guildID, userID int64) ([]models.Role, error)
	MaxPositionFn     func(ctx context.Context, guildID int64) (int, error)
	UpdateFn          func(ctx context.Context, role *models.Role) error
	UpdatePositionsFn func(ctx context.Context, guildID int64, positions map[int64]int) error
	DeleteFn          func(ctx context.Context, id int64) error
}

func (m *mockRoleRepo) Create(ctx context.Context, role *models.Role) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepo) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRoleRepo) GetByGuildID(ctx context.Context, guildID int64) ([]models.Role, error) {
	if m.GetByGuildIDFn != nil {
		return m.GetByGuildIDFn(ctx, guildID)
	}
	return nil, nil
}

func (m *mockRoleRepo) GetByMember(ctx context.Context, guildID, userID int64) ([]models.Role, error) {
	if m.GetByMemberFn != nil {
		return m.GetByMemberFn(ctx, guildID, userID)
	}
	return nil, nil
}

func (m *mockRoleRepo) MaxPosition(ctx context.Context, guildID int64) (int, error) {
	if m.MaxPositionFn != nil {
		return m.MaxPositionFn(ctx, guildID)
	}
	return 0, nil
}

func (m *mockRoleRepo) Update(ctx context.Context, role *models.Role) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepo) UpdatePositions(ctx context.Context, guildID int64, positions map[int64]int) error {
	if m.UpdatePositionsFn != nil {
		return m.UpdatePositionsFn(ctx, guildID, positions)
	}
	return nil
}

func (m *mockRoleRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockMemberRepo implements database.MemberRepository.
type mockMemberRepo struct {
	CreateFn            func(ctx context.Context, member *models.Member) error
	GetByGuildAndUserFn func(ctx context.Context, guildID, userID int64) (*models.Member, error)
	GetByGuildIDFn      func(ctx context.Context, guildID int64, limit, offset int) ([]models.Member, error)
	DeleteFn            func(ctx context.Context, guildID, userID int64) error
	AddRoleFn           func(ctx context.Context, guildID, userID, roleID int64) (bool, error)
	RemoveRoleFn        func(ctx context.Context, guildID, userID, roleID int64) (bool, error)
}

func (m *mockMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) GetByGuildAndUser(ctx context.Context, guildID, userID int64) (*models.Member, error) {
	if m.GetByGuildAndUserFn != nil {
		return m.GetByGuildAndUserFn(ctx, guildID, userID)
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByGuildID(ctx context.Context, guildID int64, limit, offset int) ([]models.Member, error) {
	if m.GetByGuildIDFn != nil {
		return m.GetByGuildIDFn(ctx, guildID, limit, offset)
	}
	return nil, nil
}

func (m *mockMemberRepo) Delete(ctx context.Context, guildID, userID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, guildID, userID)
	}
	return nil
}

func (m *mockMemberRepo) AddRole(ctx context.Context, guildID, userID, roleID int64) (bool, error) {
	if m.AddRoleFn != nil {
		return m.AddRoleFn(ctx, guildID, userID, roleID)
	}
	return true, nil
}

func (m *mockMemberRepo) RemoveRole(ctx context.Context, guildID, userID, roleID int64) (bool, error) {
	if m.RemoveRoleFn != nil {
		return m.RemoveRoleFn(ctx, guildID, userID, roleID)
	}
	return true, nil
}

// mockOverwriteRepo implements database.ChannelOverwriteRepository.
type mockOverwriteRepo struct {
	UpsertFn       func(ctx context.Context, o *models.ChannelOverwrite) error
	GetFn          func(ctx context.Context, channelID, targetID int64) (*models.ChannelOverwrite, error)
	GetByChannelFn func(ctx context.Context, channelID int64) ([]models.ChannelOverwrite, error)
	DeleteFn       func(ctx context.Context, channelID, targetID int64) error
}

func (m *mockOverwriteRepo) Upsert(ctx context.Context, o *models.ChannelOverwrite) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, o)
	}
	return nil
}

func (m *mockOverwriteRepo) Get(ctx context.Context, channelID, targetID int64) (*models.ChannelOverwrite, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, channelID, targetID)
	}
	return nil, nil
}

func (m *mockOverwriteRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelOverwrite, error) {
	if m.GetByChannelFn != nil {
		return m.GetByChannelFn(ctx, channelID)
	}
	return nil, nil
}

func (m *mockOverwriteRepo) Delete(ctx context.Context, channelID, targetID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, channelID, targetID)
	}
	return nil
}
