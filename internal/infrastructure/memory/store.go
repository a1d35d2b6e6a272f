// Package memory implementa los puertos de persistencia en memoria, para desarrollo local y tests.
// Las aprobaciones trabajan sobre una copia del estado y se confirman con una revalidación
// completa de sus escrituras contra el estado vigente (check-and-set optimista).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/repository"
)

type op func(*state) error

type state struct {
	products        map[int64]*entity.Product
	batches         map[int64]*entity.Batch
	orders          map[int64]*entity.Order
	nextBatchID     int64
	nextOrderNumber int64
	nextProductCode int64
}

func newState() *state {
	return &state{
		products:        make(map[int64]*entity.Product),
		batches:         make(map[int64]*entity.Batch),
		orders:          make(map[int64]*entity.Order),
		nextBatchID:     1,
		nextOrderNumber: 1,
		nextProductCode: 1,
	}
}

func (s *state) clone() *state {
	c := &state{
		products:        make(map[int64]*entity.Product, len(s.products)),
		batches:         make(map[int64]*entity.Batch, len(s.batches)),
		orders:          make(map[int64]*entity.Order, len(s.orders)),
		nextBatchID:     s.nextBatchID,
		nextOrderNumber: s.nextOrderNumber,
		nextProductCode: s.nextProductCode,
	}
	for k, p := range s.products {
		cp := *p
		c.products[k] = &cp
	}
	for k, b := range s.batches {
		cb := *b
		c.batches[k] = &cb
	}
	for k, o := range s.orders {
		c.orders[k] = copyOrder(o)
	}
	return c
}

// Store estado compartido protegido por un RWMutex.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Batches repositorio de lotes en modo autocommit.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{sess: s.autocommit()} }

// Orders repositorio de órdenes en modo autocommit.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{sess: s.autocommit()} }

// Products repositorio de productos en modo autocommit.
func (s *Store) Products() *ProductRepo { return &ProductRepo{sess: s.autocommit()} }

// PutProduct registra o reemplaza un producto. Code 0 asigna el siguiente código libre.
func (s *Store) PutProduct(p entity.Product) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Code == 0 {
		p.Code = s.st.nextProductCode
	}
	if p.Code >= s.st.nextProductCode {
		s.st.nextProductCode = p.Code + 1
	}
	s.st.products[p.Code] = &p
	out := p
	return &out
}

// RunApproval ejecuta fn contra una copia del estado. Si fn termina sin error sus escrituras
// se revalidan y aplican de forma atómica sobre el estado vigente.
func (s *Store) RunApproval(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	sess := &session{store: s, work: work}
	if err := fn(&OrderRepo{sess: sess}, &BatchRepo{sess: sess}, &ProductRepo{sess: sess}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(sess.ops)
}

func (s *Store) autocommit() *session {
	return &session{store: s}
}

// commit aplica ops sobre una copia y solo la publica si todas tuvieron éxito.
func (s *Store) commit(ops []op) error {
	if len(ops) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	for _, o := range ops {
		if err := o(next); err != nil {
			return err
		}
	}
	s.st = next
	return nil
}

// session lecturas y escrituras de un repositorio. Con work != nil pertenece a una transacción.
type session struct {
	store *Store
	work  *state
	ops   []op
}

func (s *session) read(fn func(*state)) {
	if s.work != nil {
		fn(s.work)
		return
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	fn(s.store.st)
}

func (s *session) write(o op) error {
	if s.work != nil {
		if err := o(s.work); err != nil {
			return err
		}
		s.ops = append(s.ops, o)
		return nil
	}
	return s.store.commit([]op{o})
}

func copyOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Lines = append([]entity.OrderLine(nil), o.Lines...)
	if o.ApprovedAt != nil {
		at := *o.ApprovedAt
		c.ApprovedAt = &at
	}
	return &c
}

func (s *state) batchView(b *entity.Batch) *entity.Batch {
	out := *b
	if p, ok := s.products[b.ProductCode]; ok {
		out.ProductName = p.Name
	}
	return &out
}

// sortFEFO ordena por vencimiento y luego por ID.
func sortFEFO(list []*entity.Batch) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ExpirationDate.Equal(list[j].ExpirationDate) {
			return list[i].ExpirationDate.Before(list[j].ExpirationDate)
		}
		return list[i].ID < list[j].ID
	})
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
