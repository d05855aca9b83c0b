package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

// memTransaction collects undo actions of every in-memory store written within one transaction.
// Every store touched by the transaction stays locked until it ends, so nobody outside sees uncommitted writes.
type memTransaction struct {
	held   map[any]bool
	unlock []func()
	undo   []func()
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	_, running := c.Value(ctxTransactionKey{}).(*memTransaction)
	if running {
		// join the transaction that is already active
		return f(c)
	}

	// Start transaction
	tx := &memTransaction{held: map[any]bool{}}
	defer tx.release()
	ctx := context.WithValue(c, ctxTransactionKey{}, tx)
	s.enter(ctx)

	// Within this block everything is transactional
	err := f(ctx)
	if err != nil {
		// Rollback
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}

	// Commit
	return nil
}

func (tx *memTransaction) release() {
	for i := len(tx.unlock) - 1; i >= 0; i-- {
		tx.unlock[i]()
	}
}

// enter locks the store. Within a transaction the lock is kept until the transaction ends.
func (s *InMemoryStore[T]) enter(c context.Context) (*memTransaction, func()) {
	tx, _ := c.Value(ctxTransactionKey{}).(*memTransaction)
	if tx == nil {
		s.Lock()
		return nil, s.Unlock
	}
	if !tx.held[s] {
		s.Lock()
		tx.held[s] = true
		tx.unlock = append(tx.unlock, s.Unlock)
	}
	return tx, func() {}
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	tx, leave := s.enter(c)
	defer leave()

	previous, existed := s.Items[uid]
	s.Items[uid] = value

	if tx != nil {
		tx.undo = append(tx.undo, func() {
			if existed {
				s.Items[uid] = previous
			} else {
				delete(s.Items, uid)
			}
		})
	}

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	_, leave := s.enter(c)
	defer leave()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) GetMulti(c context.Context, uids []string) (map[string]T, error) {
	_, leave := s.enter(c)
	defer leave()

	result := make(map[string]T, len(uids))
	for _, uid := range uids {
		value, exists := s.Items[uid]
		if exists {
			result[uid] = value
		}
	}

	return result, nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	_, leave := s.enter(c)
	defer leave()

	uids := make([]string, 0, len(s.Items))
	for uid := range s.Items {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	result := make([]T, 0, len(s.Items))
	for _, uid := range uids {
		result = append(result, s.Items[uid])
	}

	return result, nil
}

func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	return filterAndSort(all, filters, orderByField)
}

func filterAndSort[T any](items []T, filters []Filter, orderByField string) ([]T, error) {
	result := []T{}
	for _, item := range items {
		matches, err := matchesAll(item, filters)
		if err != nil {
			return nil, err
		}
		if matches {
			result = append(result, item)
		}
	}

	if orderByField != "" {
		descending := strings.HasPrefix(orderByField, "-")
		field := strings.TrimPrefix(orderByField, "-")
		sort.SliceStable(result, func(i, j int) bool {
			cmp, _ := compareValues(fieldValue(result[i], field), fieldValue(result[j], field))
			if descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	return result, nil
}

func matchesAll(item any, filters []Filter) (bool, error) {
	for _, f := range filters {
		value := fieldValue(item, f.Field)
		if value == nil {
			return false, fmt.Errorf("unknown field %s", f.Field)
		}

		if f.Compare == "=" {
			if !reflect.DeepEqual(value, f.Value) {
				return false, nil
			}
			continue
		}

		cmp, err := compareValues(value, f.Value)
		if err != nil {
			return false, err
		}
		switch f.Compare {
		case "<":
			if cmp >= 0 {
				return false, nil
			}
		case "<=":
			if cmp > 0 {
				return false, nil
			}
		case ">":
			if cmp <= 0 {
				return false, nil
			}
		case ">=":
			if cmp < 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported comparison %s", f.Compare)
		}
	}
	return true, nil
}

func fieldValue(item any, field string) any {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	f := v.FieldByName(field)
	if !f.IsValid() || !f.CanInterface() {
		return nil
	}
	return f.Interface()
}

func compareValues(a, b any) (int, error) {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return at.Compare(bt), nil
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.String && bv.Kind() == reflect.String {
		return strings.Compare(av.String(), bv.String()), nil
	}

	ai, aok := asInt64(av)
	bi, bok := asInt64(bv)
	if !aok || !bok {
		return 0, fmt.Errorf("cannot compare %T with %T", a, b)
	}
	switch {
	case ai < bi:
		return -1, nil
	case ai > bi:
		return 1, nil
	}
	return 0, nil
}

func asInt64(rv reflect.Value) (int64, bool) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	}
	return 0, false
}
