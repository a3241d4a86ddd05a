// Package pgtest holds in-memory implementations of the postgres repository
// interfaces for service and handler tests.
package pgtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diero-hl/agentclaw/internal/models"
	"github.com/diero-hl/agentclaw/internal/utils"
)

type Agents struct {
	mu   sync.Mutex
	rows []models.Agent
	// ListCalls counts List invocations, for cache assertions.
	ListCalls int
}

func NewAgents(seed ...models.Agent) *Agents {
	return &Agents{rows: append([]models.Agent(nil), seed...)}
}

func (r *Agents) List(_ context.Context, f models.AgentFilter) ([]models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ListCalls++

	var out []models.Agent
	q := strings.ToLower(strings.TrimSpace(f.Search))
	for _, a := range r.rows {
		if f.Category != "" && f.Category != "All" && a.Category != f.Category {
			continue
		}
		if q != "" && !matches(a, q) {
			continue
		}
		out = append(out, a)
	}

	switch f.Sort {
	case models.SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case models.SortTopRated:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return out[i].ReviewCount > out[j].ReviewCount
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Purchases > out[j].Purchases })
	}
	return out, nil
}

func matches(a models.Agent, q string) bool {
	if strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.ShortDescription), q) ||
		strings.Contains(strings.ToLower(a.Category), q) {
		return true
	}
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func (r *Agents) GetBySlug(_ context.Context, slug string) (*models.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.Slug == slug {
			cp := a
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *Agents) Create(_ context.Context, a *models.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.rows {
		if x.Slug == a.Slug || x.Name == a.Name {
			return utils.ErrConflict
		}
	}
	r.rows = append(r.rows, *a)
	return nil
}

func (r *Agents) IncrementViews(_ context.Context, slug string) error {
	return r.update(func(a *models.Agent) bool { return a.Slug == slug }, func(a *models.Agent) { a.Views++ })
}

func (r *Agents) IncrementPurchases(_ context.Context, slug string) error {
	return r.update(func(a *models.Agent) bool { return a.Slug == slug }, func(a *models.Agent) { a.Purchases++ })
}

func (r *Agents) UpdateRating(_ context.Context, agentID string, rating float64, reviewCount int) error {
	return r.update(func(a *models.Agent) bool { return a.ID == agentID }, func(a *models.Agent) {
		a.Rating = rating
		a.ReviewCount = reviewCount
	})
}

func (r *Agents) SetFeatured(_ context.Context, slug string, featured bool) error {
	return r.update(func(a *models.Agent) bool { return a.Slug == slug }, func(a *models.Agent) { a.Featured = featured })
}

func (r *Agents) update(match func(*models.Agent) bool, apply func(*models.Agent)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if match(&r.rows[i]) {
			apply(&r.rows[i])
			return nil
		}
	}
	return utils.ErrNotFound
}

type Reviews struct {
	mu   sync.Mutex
	rows []models.Review
}

func NewReviews() *Reviews { return &Reviews{} }

func (r *Reviews) Insert(_ context.Context, rv *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *rv)
	return nil
}

func (r *Reviews) ListByAgent(_ context.Context, agentID string) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Review
	for _, rv := range r.rows {
		if rv.AgentID == agentID {
			out = append(out, rv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Reviews) Ratings(_ context.Context, agentID string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, rv := range r.rows {
		if rv.AgentID == agentID {
			out = append(out, rv.Rating)
		}
	}
	return out, nil
}

// Conversations assigns serial ids like the real table. AppendErr, when set,
// fails every AppendMessage whose role matches FailRole (any role if empty).
type Conversations struct {
	mu       sync.Mutex
	convs    map[int64]*models.Conversation
	msgs     []models.Message
	nextConv int64
	nextMsg  int64

	AppendErr error
	FailRole  string
}

func NewConversations() *Conversations {
	return &Conversations{convs: map[int64]*models.Conversation{}}
}

func (r *Conversations) Create(_ context.Context, c *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextConv++
	c.ID = r.nextConv
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	cp := *c
	cp.Messages = nil
	r.convs[c.ID] = &cp
	return nil
}

func (r *Conversations) GetByID(_ context.Context, id int64) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *Conversations) List(_ context.Context) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Conversation, 0, len(r.convs))
	for _, c := range r.convs {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Conversations) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.convs, id)
	kept := r.msgs[:0]
	for _, m := range r.msgs {
		if m.ConversationID != id {
			kept = append(kept, m)
		}
	}
	r.msgs = kept
	return nil
}

func (r *Conversations) AppendMessage(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AppendErr != nil && (r.FailRole == "" || r.FailRole == m.Role) {
		return r.AppendErr
	}
	if _, ok := r.convs[m.ConversationID]; !ok {
		return utils.ErrNotFound
	}
	r.nextMsg++
	m.ID = r.nextMsg
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.msgs = append(r.msgs, *m)
	return nil
}

func (r *Conversations) Messages(_ context.Context, conversationID int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messagesLocked(conversationID), nil
}

func (r *Conversations) messagesLocked(id int64) []models.Message {
	var out []models.Message
	for _, m := range r.msgs {
		if m.ConversationID == id {
			out = append(out, m)
		}
	}
	return out
}

// Count reports how many conversations exist.
func (r *Conversations) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}

type Users struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func NewUsers() *Users { return &Users{rows: map[string]models.User{}} }

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.Username]; ok {
		return utils.ErrConflict
	}
	r.rows[u.Username] = *u
	return nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[username]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &u, nil
}
