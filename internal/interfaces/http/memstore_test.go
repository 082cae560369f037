package http_test

import (
	"context"
	"sync"

	"github.com/jhoicas/order-management-api/internal/domain"
	"github.com/jhoicas/order-management-api/internal/domain/entity"
	"github.com/jhoicas/order-management-api/internal/domain/repository"
)

// memStore persistencia en memoria para probar la API de punta a punta.
// RunOrders restaura el estado previo si fn falla, igual que un rollback.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]entity.User
	products map[int64]entity.Product
	orders   map[int64]entity.Order
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]entity.User{},
		products: map[int64]entity.Product{},
		orders:   map[int64]entity.Order{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) Users() *memUsers       { return &memUsers{s} }
func (s *memStore) Products() *memProducts { return &memProducts{s} }
func (s *memStore) Orders() *memOrders     { return &memOrders{s} }

func (s *memStore) RunOrders(_ context.Context, fn func(
	repository.UserRepository, repository.ProductRepository, repository.OrderRepository,
) error) error {
	s.mu.Lock()
	users, products, orders, next := cloneMap(s.users), cloneMap(s.products), cloneMap(s.orders), s.nextID
	s.mu.Unlock()

	if err := fn(s.Users(), s.Products(), s.Orders()); err != nil {
		s.mu.Lock()
		s.users, s.products, s.orders, s.nextID = users, products, orders, next
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) userIDByEmail(email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			return id
		}
	}
	return 0
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- users ---

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.UserID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.users, id)
	return nil
}

// --- products ---

type memProducts struct{ s *memStore }

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	r.s.products[p.ID] = *p
	return nil
}

func (r *memProducts) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memProducts) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for id := int64(1); id <= r.s.nextID; id++ {
		if p, ok := r.s.products[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *memProducts) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		for _, it := range o.Items {
			if it.ProductID == id {
				return domain.ErrConflict
			}
		}
	}
	delete(r.s.products, id)
	return nil
}

// --- orders ---

type memOrders struct{ s *memStore }

func (r *memOrders) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.id()
	stored := *o
	stored.User = nil
	stored.Items = make([]entity.OrderItem, len(o.Items))
	for i := range o.Items {
		o.Items[i].ID = r.s.id()
		o.Items[i].OrderID = o.ID
		stored.Items[i] = o.Items[i]
		stored.Items[i].Product = nil
	}
	r.s.orders[o.ID] = stored
	return nil
}

// hydrate arma la vista de lectura con usuario y productos; se llama con el lock tomado.
func (r *memOrders) hydrate(o entity.Order) *entity.Order {
	if u, ok := r.s.users[o.UserID]; ok {
		o.User = &u
	}
	items := make([]entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		if p, ok := r.s.products[it.ProductID]; ok {
			it.Product = &p
		}
		items[i] = it
	}
	o.Items = items
	return &o
}

func (r *memOrders) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(o), nil
}

func (r *memOrders) UpdateStatus(_ context.Context, id int64, status entity.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	r.s.orders[id] = o
	return nil
}

func (r *memOrders) ListByUser(_ context.Context, userID int64) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Order, 0)
	for id := int64(1); id <= r.s.nextID; id++ {
		if o, ok := r.s.orders[id]; ok && o.UserID == userID {
			out = append(out, r.hydrate(o))
		}
	}
	return out, nil
}

func (r *memOrders) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, o := range r.s.orders {
		if o.UserID == userID {
			delete(r.s.orders, id)
		}
	}
	return nil
}
