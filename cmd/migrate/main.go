// Command migrate repairs stored threads: it adopts legacy thread keys and
// relabels mislabeled turns. Stop the API server before running it without
// -dry-run; a reply appended while a thread is being rewritten is lost.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/suPer8Hu/askboard/internal/app"
	"github.com/suPer8Hu/askboard/internal/chat"
	"github.com/suPer8Hu/askboard/internal/config"
	"golang.org/x/sync/errgroup"
)

type stats struct {
	scanned, changed, dangling, failed atomic.Int64
}

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	kv, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatalf("store connection failed: %v", err)
	}
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := chat.NewRepo(kv)
	ids, err := repo.Index.IDs(ctx, 0)
	if err != nil {
		log.Fatalf("read post index: %v", err)
	}

	concurrency := cfg.WorkerConcurrency
	log.Printf("migrate started, posts=%d concurrency=%d dry_run=%t", len(ids), concurrency, *dryRun)
	if !*dryRun {
		log.Printf("WARNING: threads are rewritten in place; the API server must not be taking replies")
	}
	start := time.Now()

	var st stats
	jobs := make(chan string, concurrency*2)
	g, gctx := errgroup.WithContext(ctx)

	// worker pool
	for i := 0; i < concurrency; i++ {
		workerID := i
		g.Go(func() error {
			for id := range jobs {
				handleJob(gctx, repo, workerID, id, *dryRun, &st)
			}
			return nil
		})
	}

	// dispatcher
	g.Go(func() error {
		defer close(jobs)
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			select {
			case <-gctx.Done():
				log.Printf("migrate interrupted")
				return gctx.Err()
			case jobs <- id:
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("migrate stopped early: %v", err)
	}
	log.Printf("migrate done scanned=%d changed=%d dangling=%d failed=%d dry_run=%t total=%s",
		st.scanned.Load(), st.changed.Load(), st.dangling.Load(), st.failed.Load(), *dryRun, time.Since(start))
	if st.failed.Load() > 0 {
		_ = kv.Close()
		os.Exit(1)
	}
}

func handleJob(ctx context.Context, repo *chat.Repo, workerID int, postID string, dryRun bool, st *stats) {
	jobStart := time.Now()
	st.scanned.Add(1)

	res, err := repo.RepairThread(ctx, postID, dryRun)
	if err != nil {
		st.failed.Add(1)
		log.Printf("worker=%d post=%s failed cost=%s err=%v", workerID, postID, time.Since(jobStart), err)
		return
	}
	switch {
	case res.Dangling:
		st.dangling.Add(1)
	case res.Changed():
		st.changed.Add(1)
		log.Printf("worker=%d post=%s legacy=%t unparsed=%d relabeled=%d dry_run=%t cost=%s",
			workerID, postID, res.Legacy, res.Unparsed, res.Relabeled, dryRun, time.Since(jobStart))
	}
}
