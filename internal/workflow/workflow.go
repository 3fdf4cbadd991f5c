// Package workflow is the client-side synthesis engine: source selection,
// style filtering, the synthesis session and the save path into history.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"hairfit/internal/domain"
	"hairfit/internal/infra"
)

// Deps are the remote collaborators a Workflow talks to.
type Deps struct {
	Members   domain.MemberDirectory
	Styles    domain.StyleLister
	Photos    domain.PhotoFetcher
	Synth     domain.Synthesizer
	Uploader  domain.AssetUploader
	History   domain.HistoryStore
	AssetBase string
}

// Options tune a Workflow.
type Options struct {
	SynthesisTimeout time.Duration
	ForeignPolicy    ForeignOriginalPolicy
	Logger           *infra.Logger
}

// Snapshot is the state the presentation layer renders.
type Snapshot struct {
	State        State
	Preview      string
	MemberID     string
	Degraded     bool
	Style        *domain.Style
	Filtered     []domain.Style
	Gender       GenderFilter
	Tag          string
	ResultBase64 string
	FailureKind  string
	Failure      error
	CanSubmit    bool
}

// Workflow is one operator's pass through choose -> submit -> save. It is
// created per workflow entry and owns its session outright.
type Workflow struct {
	deps       Deps
	resolver   *SourceResolver
	catalog    *Catalog
	session    *Session
	reconciler *Reconciler
	logger     *infra.Logger

	saveMu sync.Mutex
	saving bool
}

// New wires a Workflow.
func New(deps Deps, opts Options) (*Workflow, error) {
	logger := infra.OrNop(opts.Logger)
	rec, err := NewReconciler(deps.Uploader, deps.History, deps.AssetBase, opts.ForeignPolicy, logger)
	if err != nil {
		return nil, err
	}
	return &Workflow{
		deps:       deps,
		resolver:   NewSourceResolver(deps.Photos, deps.AssetBase, logger),
		catalog:    NewCatalog(),
		session:    NewSession(deps.Synth, opts.SynthesisTimeout, logger),
		reconciler: rec,
		logger:     logger,
	}, nil
}

// Catalog exposes the style catalog for read access.
func (w *Workflow) Catalog() *Catalog { return w.catalog }

// Session exposes the synthesis session for read access.
func (w *Workflow) Session() *Session { return w.session }

// LoadStyles refetches the catalog and re-applies the selection rule.
func (w *Workflow) LoadStyles(ctx context.Context) ([]domain.Style, error) {
	if w.deps.Styles == nil {
		return nil, errors.New("workflow: no style catalog configured")
	}
	styles, err := w.deps.Styles.ListStyles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load styles: %w", err)
	}
	if w.catalog.SetStyles(styles) {
		w.syncStyle()
	}
	return w.catalog.Filtered(), nil
}

// SetFilter changes the gender/tag filter.
func (w *Workflow) SetFilter(gender GenderFilter, tag string) []domain.Style {
	if w.catalog.SetFilter(gender, tag) {
		w.syncStyle()
	}
	return w.catalog.Filtered()
}

// ChooseStyle selects a style from the filtered catalog.
func (w *Workflow) ChooseStyle(id string) (domain.Style, error) {
	if st := w.session.State(); st != StateIdle {
		return domain.Style{}, fmt.Errorf("%w: %s", domain.ErrSessionLocked, st)
	}
	style, err := w.catalog.Select(id)
	if err != nil {
		return domain.Style{}, err
	}
	if err := w.session.SetStyle(&style); err != nil {
		return domain.Style{}, err
	}
	return style, nil
}

// syncStyle pushes the catalog selection into an idle session. A busy or
// finished session keeps the style it was submitted with.
func (w *Workflow) syncStyle() {
	if w.session.State() != StateIdle {
		return
	}
	style, ok := w.catalog.Selected()
	var err error
	if ok {
		err = w.session.SetStyle(&style)
	} else {
		err = w.session.SetStyle(nil)
	}
	if err != nil {
		w.logger.Debug().Err(err).Msg("style selection not applied to session")
	}
}

// ChooseSource selects a camera capture or gallery pick.
func (w *Workflow) ChooseSource(data []byte) (Source, error) {
	src, err := w.resolver.FromBinary(data)
	if err != nil {
		return Source{}, err
	}
	if err := w.session.SetSource(src); err != nil {
		return Source{}, err
	}
	return src, nil
}

// ChooseSourceReader is ChooseSource over a stream.
func (w *Workflow) ChooseSourceReader(r io.Reader) (Source, error) {
	src, err := w.resolver.FromReader(r)
	if err != nil {
		return Source{}, err
	}
	if err := w.session.SetSource(src); err != nil {
		return Source{}, err
	}
	return src, nil
}

// ChooseMember looks up a member and selects their stored photo. A degraded
// (preview-only) source is returned without error; check Source.Degraded.
func (w *Workflow) ChooseMember(ctx context.Context, memberID string) (Source, error) {
	if st := w.session.State(); st != StateIdle {
		return Source{}, fmt.Errorf("%w: %s", domain.ErrSessionLocked, st)
	}
	if w.deps.Members == nil {
		return Source{}, errors.New("workflow: no member directory configured")
	}
	member, err := w.deps.Members.GetMember(ctx, strings.TrimSpace(memberID))
	if err != nil {
		return Source{}, fmt.Errorf("member %s: %w", memberID, err)
	}
	src, err := w.resolver.FromMember(ctx, *member)
	if err != nil {
		return Source{}, err
	}
	if err := w.session.SetSource(src); err != nil {
		return Source{}, err
	}
	return src, nil
}

// Members lists members that have a photo on file.
func (w *Workflow) Members(ctx context.Context) ([]domain.Member, error) {
	if w.deps.Members == nil {
		return nil, errors.New("workflow: no member directory configured")
	}
	all, err := w.deps.Members.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Member, 0, len(all))
	for _, m := range all {
		if strings.TrimSpace(m.Photo()) != "" {
			out = append(out, m)
		}
	}
	return out, nil
}

// Submit starts synthesis for the current source and style.
func (w *Workflow) Submit(ctx context.Context) error {
	return w.session.Submit(ctx)
}

// Save persists a succeeded session and resets the workflow. The returned
// record carries the stored (un-normalized) paths. On failure the session is
// left untouched so the save can be retried. A Save that overlaps another
// fails with ErrSaveInFlight and writes nothing.
func (w *Workflow) Save(ctx context.Context) (*domain.HistoryRecord, error) {
	if !w.beginSave() {
		return nil, domain.ErrSaveInFlight
	}
	defer w.endSave()

	snap := w.session.Snapshot()
	if snap.State != StateSucceeded || snap.Result == "" {
		return nil, fmt.Errorf("%w: session is %s", domain.ErrNoResult, snap.State)
	}
	if snap.Source == nil || snap.Style == nil {
		return nil, domain.ErrNoResult
	}
	rec, err := w.reconciler.Save(ctx, SaveRequest{
		MemberID:     snap.Source.MemberID,
		Original:     snap.Source.Ref,
		StyleID:      snap.Style.ID,
		ResultBase64: snap.Result,
	})
	if err != nil {
		return nil, err
	}
	w.Reset()
	return rec, nil
}

func (w *Workflow) beginSave() bool {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()
	if w.saving {
		return false
	}
	w.saving = true
	return true
}

func (w *Workflow) endSave() {
	w.saveMu.Lock()
	w.saving = false
	w.saveMu.Unlock()
}

// Reset discards the session, including any in-flight outcome, and clears
// the style selection.
func (w *Workflow) Reset() {
	w.session.Reset()
	w.catalog.Clear()
}

// Snapshot returns the renderable state.
func (w *Workflow) Snapshot() Snapshot {
	sess := w.session.Snapshot()
	gender, tag := w.catalog.Filter()
	snap := Snapshot{
		State:        sess.State,
		Style:        sess.Style,
		Filtered:     w.catalog.Filtered(),
		Gender:       gender,
		Tag:          tag,
		ResultBase64: sess.Result,
		Failure:      sess.Failure,
		FailureKind:  domain.KindOf(sess.Failure),
		CanSubmit:    w.session.Ready(),
	}
	if sess.Source != nil {
		snap.Preview = sess.Source.Preview()
		snap.MemberID = sess.Source.MemberID
		snap.Degraded = sess.Source.Degraded
	}
	return snap
}

// History lists saved records with display-ready paths.
func (w *Workflow) History(ctx context.Context) ([]domain.HistoryRecord, error) {
	if w.deps.History == nil {
		return nil, errors.New("workflow: no history store configured")
	}
	recs, err := w.deps.History.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(recs), nil
}

// HistoryItem fetches one record with display-ready paths.
func (w *Workflow) HistoryItem(ctx context.Context, id string) (*domain.HistoryRecord, error) {
	if w.deps.History == nil {
		return nil, errors.New("workflow: no history store configured")
	}
	rec, err := w.deps.History.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	out := Normalize(*rec)
	return &out, nil
}

// DeleteHistory removes a record.
func (w *Workflow) DeleteHistory(ctx context.Context, id string) error {
	if w.deps.History == nil {
		return errors.New("workflow: no history store configured")
	}
	return w.deps.History.DeleteRecord(ctx, id)
}
