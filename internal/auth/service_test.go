package auth_test

import (
	"context"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/gateway"
	"github.com/frahmantamala/hr-portal/internal/session"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

// mockGateway answers with a canned body or error per path.
type mockGateway struct {
	bodies    map[string]interface{}
	errs      map[string]error
	calls     []string
	anonymous []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{bodies: map[string]interface{}{}, errs: map[string]error{}}
}

func (m *mockGateway) DoJSON(_ context.Context, req gateway.Request, out interface{}) (*gateway.Response, error) {
	m.calls = append(m.calls, req.Method+" "+req.Path)
	if req.Anonymous {
		m.anonymous = append(m.anonymous, req.Path)
	}
	if err, ok := m.errs[req.Path]; ok {
		return nil, err
	}
	raw, _ := json.Marshal(m.bodies[req.Path])
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, err
		}
	}
	return &gateway.Response{StatusCode: http.StatusOK, Body: raw}, nil
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		gw      *mockGateway
		store   *session.Store
		service *auth.Service
		admin   user.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		gw = newMockGateway()
		store = session.NewStore(session.WithLogger(logger.Discard()))
		service = auth.NewService(gw, store, logger.Discard())
		admin = user.User{ID: "u-1", Username: "root", Email: "root@example.com", Role: user.RoleAdmin}
	})

	Describe("Login", func() {
		It("should store the returned session", func() {
			gw.bodies["/users/login"] = map[string]interface{}{"accessToken": "tok-1", "user": admin}

			s, err := service.Login(ctx, auth.LoginRequest{Email: "root@example.com", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.AccessToken).To(Equal("tok-1"))
			Expect(store.Get().User.Role).To(Equal(user.RoleAdmin))
		})

		It("should reject a malformed email before calling the backend", func() {
			_, err := service.Login(ctx, auth.LoginRequest{Email: "root", Password: "secret1"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(gw.calls).To(BeEmpty())
		})

		It("should leave the store untouched when the token is missing", func() {
			gw.bodies["/users/login"] = map[string]interface{}{"user": admin}

			_, err := service.Login(ctx, auth.LoginRequest{Email: "root@example.com", Password: "secret1"})
			Expect(internal.IsType(err, internal.ErrorTypeExternal)).To(BeTrue())
			Expect(store.Get()).To(Equal(session.Session{}))
		})

		It("should reject an unknown role", func() {
			gw.bodies["/users/login"] = map[string]interface{}{
				"accessToken": "tok-1",
				"user":        map[string]string{"id": "u-9", "role": "Owner"},
			}

			_, err := service.Login(ctx, auth.LoginRequest{Email: "root@example.com", Password: "secret1"})
			Expect(internal.IsType(err, internal.ErrorTypeExternal)).To(BeTrue())
			Expect(store.Get().HasUser()).To(BeFalse())
		})

		It("should pass backend errors through", func() {
			gw.errs["/users/login"] = internal.NewUnauthorizedError("Invalid credentials", internal.ErrCodeUnauthorized)

			_, err := service.Login(ctx, auth.LoginRequest{Email: "root@example.com", Password: "nope12"})
			Expect(err).To(MatchError("Invalid credentials"))
		})

		It("should exchange credentials without the held token", func() {
			Expect(store.Set(ctx, admin, "tok-0")).To(Succeed())
			gw.bodies["/users/login"] = map[string]interface{}{"accessToken": "tok-1", "user": admin}

			_, err := service.Login(ctx, auth.LoginRequest{Email: "root@example.com", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(gw.anonymous).To(Equal([]string{"/users/login"}))
		})
	})

	Describe("Register", func() {
		DescribeTable("client-side rules",
			func(req auth.RegisterRequest, field string) {
				_, err := service.Register(ctx, req)
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.FieldErrors()).To(ContainElement(HaveField("Field", field)))
				Expect(gw.calls).To(BeEmpty())
			},
			Entry("short username", auth.RegisterRequest{Username: "ab", Email: "a@b.io", Password: "secret1"}, "username"),
			Entry("long username", auth.RegisterRequest{Username: "abcdefghijklmnopqrstu", Email: "a@b.io", Password: "secret1"}, "username"),
			Entry("bad email", auth.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "secret1"}, "email"),
			Entry("short password", auth.RegisterRequest{Username: "alice", Email: "a@b.io", Password: "12345"}, "password"),
		)

		It("should return the created user", func() {
			gw.bodies["/users/register"] = user.User{ID: "u-2", Username: "alice", Email: "a@b.io", Role: user.RoleViewer}

			created, err := service.Register(ctx, auth.RegisterRequest{Username: "alice", Email: "a@b.io", Password: "secret1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal("u-2"))
			Expect(gw.calls).To(Equal([]string{"POST /users/register"}))
		})

		It("should surface duplicates as conflicts", func() {
			gw.errs["/users/register"] = internal.NewConflictError("Email already exists", internal.ErrCodeDuplicate)

			_, err := service.Register(ctx, auth.RegisterRequest{Username: "alice", Email: "a@b.io", Password: "secret1"})
			Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())
		})
	})

	Describe("Logout", func() {
		BeforeEach(func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())
		})

		It("should clear the session", func() {
			Expect(service.Logout(ctx)).To(Succeed())
			Expect(store.Get()).To(Equal(session.Session{}))
		})

		It("should clear the session even when the call fails", func() {
			gw.errs["/users/logout"] = internal.NewNetworkError(context.DeadlineExceeded)

			err := service.Logout(ctx)
			Expect(internal.IsType(err, internal.ErrorTypeNetwork)).To(BeTrue())
			Expect(store.Get()).To(Equal(session.Session{}))
		})
	})
})
