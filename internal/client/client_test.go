package client

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/docdesk/internal/api/dto"
	httptransport "github.com/spec-kit/docdesk/internal/api/http"
	"github.com/spec-kit/docdesk/internal/config"
	"github.com/spec-kit/docdesk/internal/domain"
	"github.com/spec-kit/docdesk/internal/events"
	"github.com/spec-kit/docdesk/internal/gateway"
	"github.com/spec-kit/docdesk/internal/repository"
	"github.com/spec-kit/docdesk/internal/session"
	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

type stack struct {
	repo       repository.TokenRepository
	store      *session.Store
	redirector *session.Redirector
	controller *session.Controller
	client     *Client

	mu          sync.Mutex
	navigations []string
}

func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	backend, err := httptransport.NewBackend(ctx, config.Config{
		App:  config.AppConfig{Name: "docdesk", Version: "test"},
		Stub: config.StubConfig{JWTSecret: "client-test", AccessTokenTTLMinutes: 30, BcryptCost: 4, SeedPassword: "password"},
	}, logger, nil)
	require.NoError(t, err)
	server := httptest.NewServer(adaptor.FiberApp(backend.App))
	t.Cleanup(server.Close)

	s := &stack{repo: repository.NewMemoryTokenRepository(), store: session.NewStore()}
	dispatcher := events.NewInMemoryDispatcher(logger)
	readiness := session.NewReadiness()
	slot := session.NewTokenSlot(s.repo, logger)
	s.redirector = session.NewRedirector(session.NavigatorFunc(func(target, _ string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.navigations = append(s.navigations, target)
	}), "/login", dispatcher, nil, logger)

	gw := gateway.New(gateway.Options{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Slot:       slot,
		Readiness:  readiness,
		Redirector: s.redirector,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	s.client = New(gw, s.store, logger)
	s.controller = session.NewController(session.Dependencies{
		Slot:       slot,
		Store:      s.store,
		Readiness:  readiness,
		Redirector: s.redirector,
		Login:      s.client,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	t.Cleanup(s.controller.Close)
	s.controller.Bootstrap(ctx)
	return s
}

func (s *stack) login(t *testing.T, username string) {
	t.Helper()
	_, err := s.controller.Login(context.Background(), username, "password")
	require.NoError(t, err)
}

func (s *stack) navigationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.navigations)
}

func TestLoginThroughController(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	got, err := s.controller.Login(ctx, "alice", "password")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, domain.RoleEmployee, got.Role)
	require.NotNil(t, got.Department)
	assert.Equal(t, "Finance", got.Department.Name)
	require.NotNil(t, got.ExpiresAt)

	token, err := s.repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(token, ".")+1)

	me, err := s.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestLoginRejectedCarriesBackendMessage(t *testing.T) {
	s := newStack(t)

	_, err := s.controller.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsLoginRejected(err))
	assert.Equal(t, "Bad credentials", err.Error())
	assert.Nil(t, s.controller.Session())
	assert.Zero(t, s.navigationCount(), "a failed login does not navigate")

	_, err = s.client.Login(context.Background(), "", "")
	assert.Equal(t, apperrors.CodeValidation, apperrors.ToDomainError(err).Code)
}

func TestPreloadFillsCollections(t *testing.T) {
	s := newStack(t)
	s.login(t, "director")

	require.NoError(t, s.client.Preload(context.Background()))

	departments, ok := s.store.Collection(session.CollectionAllDepartments)
	require.True(t, ok)
	assert.Len(t, departments, 2)
	_, ok = s.store.Collection(session.CollectionAllDocuments)
	assert.True(t, ok)
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.login(t, "alice")

	doc, err := s.client.UploadDocument(ctx, "/tmp/notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, int64(5), doc.Size)

	page, err := s.client.ListDocuments(ctx, DocumentQuery{Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	cached, ok := s.store.Collection(session.CollectionDocuments)
	require.True(t, ok)
	assert.Equal(t, page, cached)

	renamed, err := s.client.UpdateDocument(ctx, doc.ID, "renamed.txt")
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", renamed.Filename)

	var buf bytes.Buffer
	n, err := s.client.DownloadDocument(ctx, doc.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", buf.String())

	require.NoError(t, s.client.DeleteDocument(ctx, doc.ID))
	err = s.client.DeleteDocument(ctx, doc.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}

func TestUploadTooLargeNeverLeavesTheClient(t *testing.T) {
	s := newStack(t)
	s.login(t, "alice")

	big := bytes.Repeat([]byte("x"), domain.MaxUploadBytes+1)
	_, err := s.client.UploadDocument(context.Background(), "big.bin", bytes.NewReader(big))
	assert.Equal(t, apperrors.CodeValidation, apperrors.ToDomainError(err).Code)
}

func TestForbiddenCallEndsSession(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.login(t, "alice")

	_, err := s.client.ListUsers(ctx, 0, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorizationRejected(err))

	assert.Nil(t, s.controller.Session())
	_, err = s.repo.Get(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1, s.navigationCount())

	_, err = s.client.AllDocuments(ctx)
	assert.True(t, apperrors.IsAuthorizationRejected(err))
	assert.Equal(t, 1, s.navigationCount())
}

func TestDirectorManagesUsersAndDepartments(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.login(t, "director")

	dept, err := s.client.CreateDepartment(ctx, "Operations")
	require.NoError(t, err)
	dept, err = s.client.UpdateDepartment(ctx, dept.ID, "Ops")
	require.NoError(t, err)
	assert.Equal(t, "Ops", dept.Name)

	user, err := s.client.CreateUser(ctx, dto.UserRequest{
		Username:   "carol",
		Password:   "secret",
		Role:       domain.RoleEmployee,
		Department: &dto.DepartmentIDRef{ID: dept.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, user.Department)
	assert.Equal(t, dept.ID, user.Department.ID)

	_, err = s.client.CreateUser(ctx, dto.UserRequest{Username: "carol", Password: "secret", Role: domain.RoleEmployee})
	assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)

	user, err = s.client.UpdateUser(ctx, user.ID, dto.UserRequest{Username: "carol", Role: domain.RoleDeptHead, Department: &dto.DepartmentIDRef{ID: dept.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeptHead, user.Role)

	users, err := s.client.ListUsers(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(6), users.TotalElements)

	require.NoError(t, s.client.DeleteUser(ctx, user.ID))
	require.NoError(t, s.client.DeleteDepartment(ctx, dept.ID))

	page, err := s.client.ListDepartments(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
}
