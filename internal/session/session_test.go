package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/session"
	"github.com/frahmantamala/hr-portal/pkg/logger"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Store Suite")
}

var _ = Describe("Store", func() {
	var (
		ctx       context.Context
		bus       *events.EventBus
		persister *session.MemoryPersister
		store     *session.Store
		admin     user.User
		mu        sync.Mutex
		reasons   []events.SessionChangeReason
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(logger.Discard())
		persister = session.NewMemoryPersister()
		store = session.NewStore(
			session.WithPersister(persister, true),
			session.WithEventBus(bus),
			session.WithLogger(logger.Discard()),
		)
		admin = user.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: user.RoleAdmin}

		mu.Lock()
		reasons = nil
		mu.Unlock()
		bus.Subscribe(events.EventTypeSessionChanged, func(_ context.Context, e events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			reasons = append(reasons, e.(*events.SessionChangedEvent).Reason)
			return nil
		})
	})

	Describe("Set", func() {
		It("should store user and token together", func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())

			s := store.Get()
			Expect(s.Authenticated()).To(BeTrue())
			Expect(s.User.Username).To(Equal("alice"))
			Expect(s.AccessToken).To(Equal("tok-1"))
		})

		It("should reject an empty token", func() {
			err := store.Set(ctx, admin, "  ")
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(store.Get().HasUser()).To(BeFalse())
		})

		It("should reject a user without an id", func() {
			err := store.Set(ctx, user.User{Username: "ghost"}, "tok-1")
			Expect(err).To(MatchError(internal.ErrInvalidSnapshot))
			Expect(store.Get().HasToken()).To(BeFalse())
		})

		It("should publish the change before returning", func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())

			mu.Lock()
			defer mu.Unlock()
			Expect(reasons).To(Equal([]events.SessionChangeReason{events.SessionSet}))
		})

		It("should hand out copies", func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())

			s := store.Get()
			s.User.Role = user.RoleViewer
			Expect(store.Get().User.Role).To(Equal(user.RoleAdmin))
		})
	})

	Describe("UpdateAccessToken", func() {
		It("should replace the token and keep the user", func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())
			Expect(store.UpdateAccessToken(ctx, "tok-2")).To(Succeed())

			s := store.Get()
			Expect(s.AccessToken).To(Equal("tok-2"))
			Expect(s.User.ID).To(Equal("u-1"))
		})

		It("should refuse when no user is held", func() {
			err := store.UpdateAccessToken(ctx, "tok-2")
			Expect(err).To(MatchError(internal.ErrNotLoggedIn))
			Expect(store.Get().HasToken()).To(BeFalse())
		})
	})

	Describe("Clear", func() {
		It("should drop both fields and the persisted snapshot", func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())
			store.Clear(ctx)

			Expect(store.Get()).To(Equal(session.Session{}))
			saved, err := persister.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.HasUser()).To(BeFalse())
			Expect(saved.HasToken()).To(BeFalse())

			mu.Lock()
			defer mu.Unlock()
			Expect(reasons).To(Equal([]events.SessionChangeReason{events.SessionSet, events.SessionCleared}))
		})
	})

	Describe("persistence", func() {
		It("should write through on every mutation", func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())
			Expect(store.UpdateAccessToken(ctx, "tok-2")).To(Succeed())

			saved, err := persister.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.AccessToken).To(Equal("tok-2"))
			Expect(persister.Saves()).To(Equal(2))
		})

		It("should only write on Save when write-through is off", func() {
			manual := session.NewStore(session.WithPersister(persister, false), session.WithLogger(logger.Discard()))
			Expect(manual.Set(ctx, admin, "tok-1")).To(Succeed())
			Expect(persister.Saves()).To(Equal(0))

			Expect(manual.Save(ctx)).To(Succeed())
			Expect(persister.Saves()).To(Equal(1))
		})

		It("should restore a complete snapshot", func() {
			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())

			restored := session.NewStore(session.WithPersister(persister, true), session.WithLogger(logger.Discard()))
			Expect(restored.Load(ctx)).To(Succeed())
			Expect(restored.Get().AccessToken).To(Equal("tok-1"))
			Expect(restored.Get().User.Role).To(Equal(user.RoleAdmin))
		})

		It("should discard a snapshot holding a token without a user", func() {
			Expect(persister.Save(ctx, session.Session{AccessToken: "orphan"})).To(Succeed())

			restored := session.NewStore(session.WithPersister(persister, true), session.WithLogger(logger.Discard()))
			Expect(restored.Load(ctx)).To(Succeed())
			Expect(restored.Get()).To(Equal(session.Session{}))

			saved, _ := persister.Load(ctx)
			Expect(saved.HasToken()).To(BeFalse())
		})

		It("should discard a snapshot holding a user without a token", func() {
			Expect(persister.Save(ctx, session.Session{User: &admin})).To(Succeed())

			restored := session.NewStore(session.WithPersister(persister, true), session.WithLogger(logger.Discard()))
			Expect(restored.Load(ctx)).To(Succeed())
			Expect(restored.Get().HasUser()).To(BeFalse())
		})
	})

	Describe("concurrent readers", func() {
		It("should never observe a user without a token", func() {
			var wg sync.WaitGroup
			stop := make(chan struct{})
			var torn bool
			var tornMu sync.Mutex

			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						select {
						case <-stop:
							return
						default:
						}
						s := store.Get()
						if s.HasUser() != s.HasToken() {
							tornMu.Lock()
							torn = true
							tornMu.Unlock()
						}
					}
				}()
			}

			for i := 0; i < 200; i++ {
				Expect(store.Set(ctx, admin, "tok")).To(Succeed())
				store.Clear(ctx)
			}
			close(stop)
			wg.Wait()

			Expect(torn).To(BeFalse())
		})
	})

	Describe("concurrent writers", func() {
		It("should persist the snapshot that ends up in memory", func() {
			slow := &slowPersister{MemoryPersister: session.NewMemoryPersister()}
			store = session.NewStore(session.WithPersister(slow, true), session.WithLogger(logger.Discard()))

			for round := 0; round < 20; round++ {
				var wg sync.WaitGroup
				wg.Add(2)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(store.Set(ctx, admin, "tok")).To(Succeed())
				}()
				go func() {
					defer wg.Done()
					store.Clear(ctx)
				}()
				wg.Wait()

				persisted, err := slow.Load(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(persisted).To(Equal(store.Get()))
			}
		})

		It("should let observers call back into the store", func() {
			bus.Subscribe(events.EventTypeSessionChanged, func(ctx context.Context, e events.Event) error {
				if e.(*events.SessionChangedEvent).Reason == events.SessionSet {
					return store.UpdateAccessToken(ctx, "tok-observed")
				}
				return nil
			})

			Expect(store.Set(ctx, admin, "tok-1")).To(Succeed())
			Expect(store.AccessToken()).To(Equal("tok-observed"))
			Expect(persister.Load(ctx)).To(HaveField("AccessToken", "tok-observed"))
		})
	})
})

// slowPersister widens the gap between a mutation and its write-through.
type slowPersister struct {
	*session.MemoryPersister
}

func (p *slowPersister) Save(ctx context.Context, snapshot session.Session) error {
	time.Sleep(time.Millisecond)
	return p.MemoryPersister.Save(ctx, snapshot)
}

var _ = Describe("Session", func() {
	It("should decode the token expiry", func() {
		exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		Expect(err).NotTo(HaveOccurred())

		got, ok := session.Session{AccessToken: signed}.ExpiresAt()
		Expect(ok).To(BeTrue())
		Expect(got.Equal(exp)).To(BeTrue())
	})

	It("should report no expiry for opaque tokens", func() {
		_, ok := session.Session{AccessToken: "not-a-jwt"}.ExpiresAt()
		Expect(ok).To(BeFalse())
	})

	It("should expose the role only when a user is present", func() {
		_, ok := session.Session{}.Role()
		Expect(ok).To(BeFalse())

		role, ok := session.Session{User: &user.User{ID: "1", Role: user.RoleEditor}}.Role()
		Expect(ok).To(BeTrue())
		Expect(role).To(Equal(user.RoleEditor))
	})
})
