package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
)

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	audit  *memAuditRepo
	nextID int
	// createErr, when set, is returned by CreateWithAudit.
	createErr error
	getErr    error
}

func newMemUserRepo(audit *memAuditRepo) *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}, audit: audit}
}

func (r *memUserRepo) CreateWithAudit(ctx context.Context, u *entity.User, a *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("insert user: %w", repo.ErrDuplicate)
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	a.UserID = &cp.ID
	return r.audit.Insert(ctx, a)
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

type memAuditRepo struct {
	mu        sync.Mutex
	entries   []entity.AuditLog
	insertErr error
}

func (r *memAuditRepo) Insert(_ context.Context, e *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	e.ID = fmt.Sprintf("audit-%d", len(r.entries)+1)
	e.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memAuditRepo) all() []entity.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditLog(nil), r.entries...)
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

// memProductRepo evaluates filters the way the SQL predicate does.
type memProductRepo struct {
	mu       sync.RWMutex
	products []entity.Product
	images   []entity.ProductImage
	nextID   int
	listErr  error
	countErr error
	calls    map[string]int
}

func newMemProductRepo(products ...entity.Product) *memProductRepo {
	r := &memProductRepo{calls: map[string]int{}}
	for _, p := range products {
		r.nextID++
		if p.ID == "" {
			p.ID = fmt.Sprintf("p-%03d", r.nextID)
		}
		r.products = append(r.products, p)
	}
	return r
}

func (r *memProductRepo) matches(p entity.Product, f repo.ProductFilter) bool {
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinStock != nil && p.Stock < *f.MinStock {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Search != "" {
		inName := strings.Contains(p.Name, f.Search)
		inDesc := p.Description != nil && strings.Contains(*p.Description, f.Search)
		if !inName && !inDesc {
			return false
		}
	}
	return true
}

func (r *memProductRepo) List(_ context.Context, f repo.ProductFilter, opts repo.ProductListOptions) ([]entity.Product, error) {
	r.mu.Lock()
	r.calls["list"]++
	r.mu.Unlock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []entity.Product
	for _, p := range r.products {
		if r.matches(p, f) {
			out = append(out, p)
		}
	}
	desc := opts.SortOrder == repo.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if opts.SortBy == repo.SortByPrice && a.Price != b.Price {
			return (a.Price < b.Price) != desc
		}
		if opts.SortBy == repo.SortByName && a.Name != b.Name {
			return (a.Name < b.Name) != desc
		}
		return a.ID < b.ID
	})
	if opts.Offset >= len(out) {
		return []entity.Product{}, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(out) {
		end = len(out)
	}
	page := out[opts.Offset:end]
	if opts.IncludeImages {
		for i := range page {
			page[i].Images = r.imagesOf(page[i].ID)
		}
	}
	return page, nil
}

// imagesOf mirrors the SQL loader: position ascending, insertion order on ties.
func (r *memProductRepo) imagesOf(productID string) []entity.ProductImage {
	out := []entity.ProductImage{}
	for _, img := range r.images {
		if img.ProductID == productID {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (r *memProductRepo) Count(_ context.Context, f repo.ProductFilter) (int, error) {
	r.mu.Lock()
	r.calls["count"]++
	r.mu.Unlock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	n := 0
	for _, p := range r.products {
		if r.matches(p, f) {
			n++
		}
	}
	return n, nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.SKU == p.SKU {
			return fmt.Errorf("insert product: %w", repo.ErrDuplicate)
		}
	}
	r.nextID++
	p.ID = fmt.Sprintf("p-%03d", r.nextID)
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.products = append(r.products, *p)
	return nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product, _ []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == p.ID {
			p.CreatedAt = r.products[i].CreatedAt
			p.UpdatedAt = time.Now().UTC()
			r.products[i] = *p
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *memProductRepo) AddImage(_ context.Context, img *entity.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img.Position < 0 {
		img.Position = 0
		for _, existing := range r.images {
			if existing.ProductID == img.ProductID && existing.Position >= img.Position {
				img.Position = existing.Position + 1
			}
		}
	}
	if img.IsPrimary {
		for i := range r.images {
			if r.images[i].ProductID == img.ProductID {
				r.images[i].IsPrimary = false
			}
		}
	}
	img.ID = fmt.Sprintf("img-%d", len(r.images)+1)
	r.images = append(r.images, *img)
	return nil
}

type memCategoryRepo struct {
	cats []entity.Category
	err  error
}

func (r *memCategoryRepo) List(context.Context) ([]entity.Category, error) {
	return r.cats, r.err
}

type memIndex struct {
	mu      sync.Mutex
	indexed map[string]entity.Product
	deleted []string
	err     error
}

func newMemIndex() *memIndex { return &memIndex{indexed: map[string]entity.Product{}} }

func (m *memIndex) Index(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.indexed[p.ID] = *p
	return nil
}

func (m *memIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexed, id)
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *memIndex) Search(_ context.Context, q string, size int) ([]ProductHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var hits []ProductHit
	for _, p := range m.indexed {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) && len(hits) < size {
			hits = append(hits, ProductHit{ID: p.ID, Name: p.Name, SKU: p.SKU})
		}
	}
	return hits, nil
}

type memUploader struct {
	uploaded map[string]string
	err      error
}

func (u *memUploader) Upload(_ context.Context, productID, filename, _ string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if u.uploaded == nil {
		u.uploaded = map[string]string{}
	}
	url := "https://cdn.test/" + productID + "/" + filename
	u.uploaded[url] = string(b)
	return url, nil
}

var errStorage = errors.New("connection reset by peer")
