package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/nutrifit/internal/models"
)

var errStoreDown = errors.New("store unreachable")

type memoryDocumentRepo struct {
	mu       sync.Mutex
	docs     map[string]map[string]models.JSON
	writes   int
	getErr   error
	setErr   error
	lastKeys []string
	versions map[string]int64
	// beforeVersioned 在版本化写入取锁前调用，用于编排并发顺序
	beforeVersioned func(version int64)
}

func newMemoryDocumentRepo() *memoryDocumentRepo {
	return &memoryDocumentRepo{docs: make(map[string]map[string]models.JSON), versions: make(map[string]int64)}
}

func (r *memoryDocumentRepo) Get(_ context.Context, collection, id string) (models.JSON, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	doc, ok := r.docs[collection][id]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (r *memoryDocumentRepo) Set(_ context.Context, collection, id string, data models.JSON) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	if r.docs[collection] == nil {
		r.docs[collection] = make(map[string]models.JSON)
	}
	r.docs[collection][id] = data
	r.writes++
	r.lastKeys = append(r.lastKeys, collection+"/"+id)
	return nil
}

func (r *memoryDocumentRepo) SetVersioned(ctx context.Context, collection, id string, data models.JSON, version int64) (bool, error) {
	if r.beforeVersioned != nil {
		r.beforeVersioned(version)
	}
	r.mu.Lock()
	key := collection + "/" + id
	if stored, ok := r.versions[key]; ok && stored >= version {
		r.mu.Unlock()
		return false, nil
	}
	r.mu.Unlock()
	if err := r.Set(ctx, collection, id, data); err != nil {
		return false, err
	}
	r.mu.Lock()
	r.versions[key] = version
	r.mu.Unlock()
	return true, nil
}

func (r *memoryDocumentRepo) List(_ context.Context, collection string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := make([]models.Document, 0, len(r.docs[collection]))
	for id, data := range r.docs[collection] {
		out = append(out, models.Document{Collection: collection, DocID: id, Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out, nil
}

func (r *memoryDocumentRepo) Delete(_ context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs[collection], id)
	return nil
}

func (r *memoryDocumentRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

type recordingNotifier struct {
	calls    []OrderSummary
	failErr  error
	onNotify func()
}

func (n *recordingNotifier) NotifyOrder(_ context.Context, summary OrderSummary) error {
	n.calls = append(n.calls, summary)
	if n.onNotify != nil {
		n.onNotify()
	}
	return n.failErr
}

type stubMailer struct {
	owner    string
	sent     []string
	buyerErr error
	ownerErr error
}

func (m *stubMailer) SendOrderConfirmation(toEmail string, _ OrderSummary) error {
	m.sent = append(m.sent, "buyer:"+toEmail)
	return m.buyerErr
}

func (m *stubMailer) SendOrderReceived(toEmail string, _ OrderSummary) error {
	m.sent = append(m.sent, "owner:"+toEmail)
	return m.ownerErr
}

func (m *stubMailer) OwnerAddress() string {
	return m.owner
}
