package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"kanban-cli/internal/model"

	"github.com/charmbracelet/log"
)

// Adapter persists board snapshots.
//
// Load returns ErrAbsent when nothing is stored and a PersistenceReadError when stored
// data cannot be decoded. Save must be durable by the time it returns.
type Adapter interface {
	Load(ctx context.Context) (model.Board, error)
	Save(ctx context.Context, b model.Board) error
}

// Quarantiner is implemented by adapters that can set corrupt data aside before the
// store overwrites it with the seed board.
type Quarantiner interface {
	Quarantine(ctx context.Context) error
}

// Result is what every mutating Store operation returns.
type Result struct {
	Board   model.Board
	Changed bool
	// Rejected holds the ValidationError for input the store ignored.
	Rejected error
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDFunc replaces the random id generator (tests use deterministic ids).
func WithIDFunc(fn func(prefix string) (string, error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store owns the canonical board snapshot. Every successful mutation replaces the
// snapshot and saves it through the adapter before returning.
type Store struct {
	mu      sync.Mutex
	adapter Adapter
	logger  *log.Logger
	newID   func(prefix string) (string, error)

	cur        model.Board
	persistErr error
}

func NewStore(a Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: a,
		logger:  log.New(io.Discard),
		newID:   newRandomID,
		cur:     model.Board{Lists: []model.List{}},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize loads the stored board. When nothing is stored, or the stored data is
// corrupt, it falls back to the seed board and saves it right away. Any other read
// failure yields the seed in memory only; storage is left alone and the failure is
// reported through PersistErr. Read problems are logged, never returned.
func (s *Store) Initialize(ctx context.Context) model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.adapter.Load(ctx)
	if err == nil {
		b.Normalize()
		err = CheckInvariants(b)
		if err == nil {
			s.cur = b
			s.logger.Debug("board loaded", "lists", len(b.Lists), "cards", b.CardCount())
			return s.cur
		}
		err = PersistenceReadError{Source: "board", Err: err}
	}

	s.cur = model.SeedBoard()
	switch {
	case errors.Is(err, ErrAbsent):
		s.logger.Info("no stored board; seeding default")
	case IsCorrupt(err):
		s.logger.Warn("stored board unusable; seeding default", "err", err)
		if q, ok := s.adapter.(Quarantiner); ok {
			if qerr := q.Quarantine(ctx); qerr != nil {
				s.persistErr = fmt.Errorf("quarantine: %w", qerr)
				s.logger.Error("quarantine failed; stored board left in place", "err", qerr)
				return s.cur
			}
		}
	default:
		s.persistErr = fmt.Errorf("load: %w", err)
		s.logger.Error("stored board unreadable; not seeding storage", "err", err)
		return s.cur
	}
	s.save(ctx, "seed")
	return s.cur
}

// Reload re-reads the adapter, for when another process changed storage. On a read
// error the current snapshot is kept and the error is returned.
func (s *Store) Reload(ctx context.Context) (model.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.adapter.Load(ctx)
	if err != nil {
		return s.cur, err
	}
	b.Normalize()
	if err := CheckInvariants(b); err != nil {
		return s.cur, PersistenceReadError{Source: "board", Err: err}
	}
	s.cur = b
	return s.cur, nil
}

func (s *Store) Snapshot() model.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// PersistErr returns the error from the most recent save, nil if it succeeded.
func (s *Store) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

func (s *Store) AddList(ctx context.Context, title string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		return s.reject("add_list", ValidationError{Field: "title", Reason: "must not be blank"}), nil
	}
	id, err := uniqueID(s.cur, s.newID, "list")
	if err != nil {
		return Result{Board: s.cur}, err
	}

	lists := make([]model.List, 0, len(s.cur.Lists)+1)
	lists = append(lists, s.cur.Lists...)
	lists = append(lists, model.List{ID: id, Title: title, Cards: []model.Card{}})
	return s.commit(ctx, "add_list", model.Board{Lists: lists}, "list", id), nil
}

func (s *Store) AddCard(ctx context.Context, listID, title, description string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li := s.cur.ListIndex(listID)
	if li < 0 {
		return Result{Board: s.cur}, NotFoundError{Kind: "list", ID: listID}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return s.reject("add_card", ValidationError{Field: "title", Reason: "must not be blank"}), nil
	}
	id, err := uniqueID(s.cur, s.newID, "card")
	if err != nil {
		return Result{Board: s.cur}, err
	}

	src := s.cur.Lists[li].Cards
	cards := make([]model.Card, 0, len(src)+1)
	cards = append(cards, src...)
	cards = append(cards, model.NewCard(id, title, description))
	return s.commit(ctx, "add_card", s.withList(li, cards), "card", id), nil
}

// MoveCard relocates the card at (srcListID, srcIndex) to (dstListID, dstIndex).
func (s *Store) MoveCard(ctx context.Context, srcListID string, srcIndex int, dstListID string, dstIndex int) (Result, error) {
	return s.Drop(ctx, Locator{ListID: srcListID, Index: srcIndex}, &Locator{ListID: dstListID, Index: dstIndex})
}

// Drop applies the end of a drag gesture. A nil dst means the drag was cancelled.
func (s *Store) Drop(ctx context.Context, src Locator, dst *Locator) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(ctx, src, dst)
}

// MoveCardTo moves a card, found by id, to position in dstListID.
func (s *Store) MoveCardTo(ctx context.Context, cardID, dstListID string, position int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li, ci, ok := s.cur.FindCard(cardID)
	if !ok {
		return Result{Board: s.cur}, NotFoundError{Kind: "card", ID: cardID}
	}
	src := Locator{ListID: s.cur.Lists[li].ID, Index: ci}
	return s.moveLocked(ctx, src, &Locator{ListID: dstListID, Index: position})
}

func (s *Store) moveLocked(ctx context.Context, src Locator, dst *Locator) (Result, error) {
	if dst == nil || src.same(*dst) {
		return Result{Board: s.cur}, nil
	}
	next, err := Reorder(s.cur, src, dst)
	if err != nil {
		return Result{Board: s.cur}, err
	}
	return s.commit(ctx, "move_card", next, "from", src, "to", *dst), nil
}

// UpdateCard applies patch to the card with id cardID, wherever it is on the board.
func (s *Store) UpdateCard(ctx context.Context, cardID string, patch CardPatch) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li, ci, ok := s.cur.FindCard(cardID)
	if !ok {
		return Result{Board: s.cur}, NotFoundError{Kind: "card", ID: cardID}
	}
	if err := patch.validate(); err != nil {
		return s.reject("update_card", err), nil
	}
	if patch.Empty() {
		return Result{Board: s.cur}, nil
	}

	src := s.cur.Lists[li].Cards
	cards := append([]model.Card(nil), src...)
	cards[ci] = patch.apply(src[ci])
	return s.commit(ctx, "update_card", s.withList(li, cards), "card", cardID), nil
}

// ReplaceCard writes back the fields of an edit session (see PatchFromCard).
func (s *Store) ReplaceCard(ctx context.Context, c model.Card) (Result, error) {
	return s.UpdateCard(ctx, c.ID, PatchFromCard(c))
}

// AddMemberToAll adds name to the members of every card on the board. Cards that
// already list the member are left as they are.
func (s *Store) AddMemberToAll(ctx context.Context, name string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return s.reject("add_member", ValidationError{Field: "member", Reason: "must not be blank"}), nil
	}

	changed := false
	lists := make([]model.List, len(s.cur.Lists))
	for li, l := range s.cur.Lists {
		lists[li] = l
		var cards []model.Card
		for ci, c := range l.Cards {
			if c.HasMember(name) {
				continue
			}
			if cards == nil {
				cards = append([]model.Card(nil), l.Cards...)
			}
			members := make([]string, 0, len(c.Members)+1)
			members = append(members, c.Members...)
			cards[ci].Members = append(members, name)
		}
		if cards != nil {
			lists[li].Cards = cards
			changed = true
		}
	}
	if !changed {
		return Result{Board: s.cur}, nil
	}
	return s.commit(ctx, "add_member", model.Board{Lists: lists}, "member", name), nil
}

func (s *Store) RemoveCard(ctx context.Context, cardID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li, ci, ok := s.cur.FindCard(cardID)
	if !ok {
		return Result{Board: s.cur}, NotFoundError{Kind: "card", ID: cardID}
	}
	return s.commit(ctx, "remove_card", s.withList(li, removeCardAt(s.cur.Lists[li].Cards, ci)), "card", cardID), nil
}

// Replace swaps in a whole board (import, reset). The board must satisfy CheckInvariants.
func (s *Store) Replace(ctx context.Context, b model.Board) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.Normalize()
	if err := CheckInvariants(b); err != nil {
		return Result{Board: s.cur}, err
	}
	return s.commit(ctx, "replace", b, "lists", len(b.Lists)), nil
}

// withList returns the current board with list li's cards replaced.
func (s *Store) withList(li int, cards []model.Card) model.Board {
	lists := append([]model.List(nil), s.cur.Lists...)
	lists[li].Cards = cards
	return model.Board{Lists: lists}
}

func (s *Store) reject(op string, err error) Result {
	s.logger.Info("rejected", "op", op, "reason", err)
	return Result{Board: s.cur, Rejected: err}
}

func (s *Store) commit(ctx context.Context, op string, next model.Board, kv ...any) Result {
	s.cur = next
	s.logger.Debug(op, kv...)
	s.save(ctx, op)
	return Result{Board: s.cur, Changed: true}
}

func (s *Store) save(ctx context.Context, op string) {
	if err := s.adapter.Save(ctx, s.cur); err != nil {
		s.persistErr = fmt.Errorf("save after %s: %w", op, err)
		s.logger.Error("save failed", "op", op, "err", err)
		return
	}
	s.persistErr = nil
}

// CheckInvariants verifies a whole board: ids are present and unique, titles are not
// blank and every card enum holds a known value.
func CheckInvariants(b model.Board) error {
	seen := map[string]bool{}
	for _, l := range b.Lists {
		if strings.TrimSpace(l.ID) == "" {
			return ValidationError{Field: "list.id", Reason: "must not be blank"}
		}
		if seen[l.ID] {
			return ValidationError{Field: "list.id", Reason: "duplicate " + l.ID}
		}
		if strings.TrimSpace(l.Title) == "" {
			return ValidationError{Field: "list.title", Reason: "must not be blank (list " + l.ID + ")"}
		}
		seen[l.ID] = true
	}
	cards := map[string]bool{}
	for _, l := range b.Lists {
		for _, c := range l.Cards {
			if strings.TrimSpace(c.ID) == "" {
				return ValidationError{Field: "card.id", Reason: "must not be blank"}
			}
			if cards[c.ID] {
				return ValidationError{Field: "card.id", Reason: "duplicate " + c.ID}
			}
			if err := checkCard(c); err != nil {
				return err
			}
			cards[c.ID] = true
		}
	}
	return nil
}

func checkCard(c model.Card) error {
	switch {
	case strings.TrimSpace(c.Title) == "":
		return ValidationError{Field: "card.title", Reason: "must not be blank (card " + c.ID + ")"}
	case !c.Priority.Valid():
		return ValidationError{Field: "card.priority", Reason: fmt.Sprintf("unknown value %q (card %s)", c.Priority, c.ID)}
	case !c.Role.Valid():
		return ValidationError{Field: "card.role", Reason: fmt.Sprintf("unknown value %q (card %s)", c.Role, c.ID)}
	case c.Label != nil && !c.Label.Valid():
		return ValidationError{Field: "card.label", Reason: fmt.Sprintf("unknown value %q (card %s)", *c.Label, c.ID)}
	}
	return nil
}
