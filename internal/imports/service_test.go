package imports

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meganoshop/megano-backend/pkg/config"
	"github.com/meganoshop/megano-backend/pkg/db/models"
	"github.com/meganoshop/megano-backend/pkg/logger"
	"github.com/meganoshop/megano-backend/pkg/metrics"
)

type stubRepo struct {
	sellers  map[uuid.UUID]bool
	products map[uuid.UUID]bool

	upserts []upsertCall
	jobs    []*models.ImportJob
}

type upsertCall struct {
	sellerID  uuid.UUID
	productID uuid.UUID
	price     decimal.Decimal
	quantity  int
}

func (s *stubRepo) SellerExists(_ context.Context, sellerID uuid.UUID) (bool, error) {
	return s.sellers[sellerID], nil
}

func (s *stubRepo) ProductExists(_ context.Context, productID uuid.UUID) (bool, error) {
	return s.products[productID], nil
}

func (s *stubRepo) UpsertListing(_ context.Context, sellerID, productID uuid.UUID, price decimal.Decimal, quantity int) error {
	s.upserts = append(s.upserts, upsertCall{sellerID: sellerID, productID: productID, price: price, quantity: quantity})
	return nil
}

func (s *stubRepo) CreateJob(_ context.Context, job *models.ImportJob) error {
	job.ID = uuid.New()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *stubRepo) UpdateJob(context.Context, *models.ImportJob) error { return nil }

type importDirs struct {
	inbox   string
	success string
	failure string
}

func newDirs(t *testing.T) importDirs {
	t.Helper()
	root := t.TempDir()
	dirs := importDirs{
		inbox:   filepath.Join(root, "inbox"),
		success: filepath.Join(root, "success"),
		failure: filepath.Join(root, "failure"),
	}
	if err := os.MkdirAll(dirs.inbox, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dirs
}

func newTestService(t *testing.T, repo *stubRepo, dirs importDirs) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Config: config.ImportConfig{
			InboxDir:   dirs.inbox,
			SuccessDir: dirs.success,
			FailureDir: dirs.failure,
		},
		Metrics: metrics.NewImportJobMetrics(nil),
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func knownRefs(repo *stubRepo) (uuid.UUID, uuid.UUID) {
	sellerID, productID := uuid.New(), uuid.New()
	repo.sellers = map[uuid.UUID]bool{sellerID: true}
	repo.products = map[uuid.UUID]bool{productID: true}
	return sellerID, productID
}

func itemJSON(sellerID, productID uuid.UUID, price string, quantity int) string {
	return fmt.Sprintf(`{"seller_id":%q,"product_id":%q,"price":%q,"quantity":%d,"created_at":"2026-08-01T00:00:00Z"}`,
		sellerID, productID, price, quantity)
}

func TestProcessFileAllItemsSucceed(t *testing.T) {
	repo := &stubRepo{}
	sellerID, productID := knownRefs(repo)
	dirs := newDirs(t)
	svc := newTestService(t, repo, dirs)

	path := writeFile(t, dirs.inbox, "listings.json",
		"["+itemJSON(sellerID, productID, "19.99", 5)+"]")

	result, err := svc.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if result.Processed != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(repo.upserts) != 1 || repo.upserts[0].quantity != 5 {
		t.Fatalf("expected one listing written, got %v", repo.upserts)
	}
	if filepath.Dir(result.MovedTo) != dirs.success {
		t.Fatalf("clean file must land in the success dir, got %s", result.MovedTo)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("source file must be moved out of the inbox")
	}
}

func TestProcessFileContinuesPastBadItems(t *testing.T) {
	repo := &stubRepo{}
	sellerID, productID := knownRefs(repo)
	dirs := newDirs(t)
	svc := newTestService(t, repo, dirs)

	path := writeFile(t, dirs.inbox, "listings.json", "["+
		itemJSON(sellerID, productID, "10.00", 1)+","+
		itemJSON(uuid.New(), productID, "10.00", 1)+","+ // unknown seller
		itemJSON(sellerID, productID, "-3.00", 1)+ // bad price
		"]")

	result, err := svc.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if result.Processed != 1 || result.Failed != 2 {
		t.Fatalf("expected 1 imported and 2 rejected, got %+v", result)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("good items must still be written, got %d", len(repo.upserts))
	}
	if filepath.Dir(result.MovedTo) != dirs.failure {
		t.Fatalf("partially failed file must land in the failure dir, got %s", result.MovedTo)
	}
}

func TestProcessFileMalformedJSON(t *testing.T) {
	repo := &stubRepo{}
	dirs := newDirs(t)
	svc := newTestService(t, repo, dirs)

	path := writeFile(t, dirs.inbox, "broken.json", "{not json")

	result, err := svc.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if filepath.Dir(result.MovedTo) != dirs.failure {
		t.Fatalf("malformed file must land in the failure dir, got %s", result.MovedTo)
	}
	if len(repo.upserts) != 0 {
		t.Fatal("malformed file must not write listings")
	}
}

func TestScanInboxProcessesAllFiles(t *testing.T) {
	repo := &stubRepo{}
	sellerID, productID := knownRefs(repo)
	dirs := newDirs(t)
	svc := newTestService(t, repo, dirs)

	writeFile(t, dirs.inbox, "a.json", "["+itemJSON(sellerID, productID, "5.00", 1)+"]")
	writeFile(t, dirs.inbox, "b.json", "["+itemJSON(sellerID, productID, "6.00", 2)+"]")
	writeFile(t, dirs.inbox, "ignored.txt", "not an import")

	results, err := svc.ScanInbox(context.Background())
	if err != nil {
		t.Fatalf("ScanInbox: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 processed files, got %d", len(results))
	}
	if len(repo.upserts) != 2 {
		t.Fatalf("expected 2 listings written, got %d", len(repo.upserts))
	}
}
