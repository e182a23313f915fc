package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"land_alert/dedup"
	"land_alert/extract"
	"land_alert/identity"
	"land_alert/models"
	"land_alert/notify"
	"land_alert/renderer"
	"land_alert/storage"
)

// ErrChallengeBlocked marks a page that served an anti-bot interstitial
// instead of content. The pipeline never tries to bypass it; callers may
// retry later, but not immediately.
var ErrChallengeBlocked = errors.New("blocked by challenge")

// MarkPolicy decides when the dedup mark is written.
type MarkPolicy string

const (
	// MarkEager records the URL before the fetch: duplicate submissions
	// of a URL that failed mid-pipeline stay suppressed until the TTL
	// expires. This rate-limits retries at the cost of dropping
	// listings whose first render happened to fail.
	MarkEager MarkPolicy = "eager"
	// MarkOnSuccess records the URL only once the listing was consumed
	// (posted, filtered out, or missing the land field). Transient
	// fetch failures and challenge blocks leave the URL retryable.
	MarkOnSuccess MarkPolicy = "onsuccess"
)

// Pipeline turns one listing URL into a terminal outcome:
// dedup -> render -> challenge gate -> extract -> filter -> notify.
type Pipeline struct {
	store      dedup.Store
	renderer   renderer.Renderer
	notifier   notify.Notifier
	extractor  *extract.Extractor
	detector   *extract.Detector
	minLandM2  int
	markPolicy MarkPolicy

	journal   *storage.SQLiteStore
	archive   *storage.PostgresStore
	snapshots *storage.SnapshotStore
}

func New(
	store dedup.Store,
	rend renderer.Renderer,
	notifier notify.Notifier,
	extractor *extract.Extractor,
	detector *extract.Detector,
	minLandM2 int,
	markPolicy MarkPolicy,
) *Pipeline {
	return &Pipeline{
		store:      store,
		renderer:   rend,
		notifier:   notifier,
		extractor:  extractor,
		detector:   detector,
		minLandM2:  minLandM2,
		markPolicy: markPolicy,
	}
}

// SetJournal attaches the optional SQLite request journal.
func (p *Pipeline) SetJournal(journal *storage.SQLiteStore) {
	p.journal = journal
}

// SetArchive attaches the optional Postgres notified-listing archive.
func (p *Pipeline) SetArchive(archive *storage.PostgresStore) {
	p.archive = archive
}

// SetSnapshots attaches the optional S3 store for blocked-page markup.
func (p *Pipeline) SetSnapshots(snapshots *storage.SnapshotStore) {
	p.snapshots = snapshots
}

// Process runs one request through every gate in order; the first gate
// to fail short-circuits the rest. Gate outcomes come back as an
// Outcome; infrastructure failures come back as errors the caller can
// branch on (renderer.ErrRenderTimeout, ErrChallengeBlocked,
// *notify.DeliveryError).
func (p *Pipeline) Process(ctx context.Context, req *models.AlertRequest) (*models.Outcome, error) {
	requestID := uuid.New().String()
	fp := identity.Fingerprint(req.URL)
	started := time.Now()

	run := &models.RequestRun{
		ID:             requestID,
		URLFingerprint: fp,
		Source:         req.Source,
		Status:         "running",
		StartedAt:      started,
	}
	p.journalCreate(run)

	out := &models.Outcome{RequestID: requestID, URL: req.URL}

	var procErr error
	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		run.DurationMS = now.Sub(started).Milliseconds()
		if procErr != nil {
			run.Status = "failed"
			run.Error = procErr.Error()
		} else {
			run.Status = string(out.Status)
		}
		p.journalFinish(run)
	}()

	// 1. Dedup gate.
	if p.alreadySeen(fp) {
		out.Status = models.StatusDedupSkipped
		return out, nil
	}

	// 2. Fetch.
	page, err := p.renderer.Render(ctx, req.URL)
	if err != nil {
		procErr = err
		return nil, err
	}

	// 3. Challenge gate.
	if p.detector.Blocked(page.HTML) {
		p.saveSnapshot(ctx, requestID, fp, page.HTML)
		procErr = ErrChallengeBlocked
		return nil, ErrChallengeBlocked
	}

	// 4. Extract.
	fields := p.extractor.Fields(page.Text)
	out.Fields = &fields
	run.LandM2, run.PriceEUR, run.AreaM2 = fields.LandM2, fields.PriceEUR, fields.AreaM2

	if fields.LandM2 == nil {
		p.consume(fp)
		out.Status = models.StatusNoLandField
		return out, nil
	}
	out.LandM2 = fields.LandM2

	// 5. Filter gate. Threshold is inclusive: land == minimum passes.
	if p.minLandM2 > 0 && *fields.LandM2 < p.minLandM2 {
		p.consume(fp)
		out.Status = models.StatusFilteredOut
		return out, nil
	}

	// 6. Notify.
	msg := notify.FormatMessage(req.URL, fields)
	if err := p.notifier.Send(ctx, msg); err != nil {
		procErr = err
		return nil, err
	}
	p.consume(fp)

	out.Status = models.StatusPosted
	out.Message = msg

	if p.archive != nil {
		rec := &models.NotifiedListing{
			Fingerprint: fp,
			URL:         req.URL,
			Source:      req.Source,
			LandM2:      fields.LandM2,
			PriceEUR:    fields.PriceEUR,
			AreaM2:      fields.AreaM2,
			Message:     msg,
			NotifiedAt:  time.Now(),
		}
		if err := p.archive.ArchiveNotified(ctx, rec); err != nil {
			log.Printf("Warning: failed to archive notified listing: %v", err)
		}
	}

	return out, nil
}

// alreadySeen applies the mark policy at the dedup gate. Under the eager
// policy the mark is written here, before the fetch; under onsuccess the
// gate only reads, and consume writes the mark later.
func (p *Pipeline) alreadySeen(fp string) bool {
	if p.markPolicy == MarkOnSuccess {
		return p.store.Seen(fp)
	}
	return p.store.SeenOrMark(fp)
}

func (p *Pipeline) consume(fp string) {
	if p.markPolicy == MarkOnSuccess {
		p.store.Mark(fp)
	}
}

func (p *Pipeline) saveSnapshot(ctx context.Context, requestID, fp, markup string) {
	if p.snapshots == nil {
		return
	}
	key, err := p.snapshots.SaveBlockedPage(ctx, fp, markup)
	if err != nil {
		log.Printf("Warning: failed to upload blocked-page snapshot: %v", err)
		return
	}
	log.Printf("Blocked page snapshot saved: %s", key)
	p.journalLog(requestID, models.LogLevelWarn, "challenge snapshot: "+key)
}

func (p *Pipeline) journalCreate(run *models.RequestRun) {
	if p.journal == nil {
		return
	}
	if err := p.journal.CreateRun(run); err != nil {
		log.Printf("Warning: failed to create run record: %v", err)
	}
}

func (p *Pipeline) journalFinish(run *models.RequestRun) {
	if p.journal == nil {
		return
	}
	if err := p.journal.FinishRun(run); err != nil {
		log.Printf("Warning: failed to finalize run record: %v", err)
	}
}

func (p *Pipeline) journalLog(runID string, level models.LogLevel, message string) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Log(runID, level, message); err != nil {
		log.Printf("Warning: failed to write run log: %v", err)
	}
}
