package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"land_alert/models"
	"land_alert/notify"
	"land_alert/storage"
)

// Digest periodically summarizes the last 24h of request outcomes into a
// chat message. It only reads the journal; it never touches the dedup
// store.
type Digest struct {
	spec     string
	journal  *storage.SQLiteStore
	notifier notify.Notifier
	cron     *cron.Cron
}

func NewDigest(spec string, journal *storage.SQLiteStore, notifier notify.Notifier) *Digest {
	return &Digest{
		spec:     spec,
		journal:  journal,
		notifier: notifier,
		cron:     cron.New(),
	}
}

func (d *Digest) Start(ctx context.Context) error {
	_, err := d.cron.AddFunc(d.spec, func() {
		if err := d.send(ctx); err != nil {
			log.Printf("Digest error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest cron expression: %w", err)
	}

	log.Printf("Digest scheduled: %s", d.spec)
	d.cron.Start()
	return nil
}

func (d *Digest) Stop() {
	d.cron.Stop()
}

func (d *Digest) send(ctx context.Context) error {
	counts, err := d.journal.OutcomeCounts(time.Now().Add(-24 * time.Hour))
	if err != nil {
		return fmt.Errorf("outcome counts: %w", err)
	}

	if len(counts) == 0 {
		log.Println("Digest: no requests in the last 24h, skipping")
		return nil
	}

	var b strings.Builder
	b.WriteString("Bilan des dernieres 24h\n")
	for _, status := range []models.Status{
		models.StatusPosted,
		models.StatusFilteredOut,
		models.StatusNoLandField,
		models.StatusDedupSkipped,
	} {
		if n, ok := counts[string(status)]; ok {
			fmt.Fprintf(&b, "%s: %d\n", status, n)
		}
	}
	if n, ok := counts["failed"]; ok {
		fmt.Fprintf(&b, "failed: %d\n", n)
	}

	return d.notifier.Send(ctx, strings.TrimRight(b.String(), "\n"))
}
