package filearea

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/db"
)

func setup(t *testing.T) (*Repo, int) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "bbs.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	res, err := d.Exec(`INSERT INTO users (username, password_hash, registration_date) VALUES ('sysop', 'x', ?)`, time.Now())
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	uid, _ := res.LastInsertId()
	return NewRepo(d.DB), int(uid)
}

func TestFindArea(t *testing.T) {
	ctx := context.Background()
	r, _ := setup(t)

	general, err := r.AreaByName(ctx, GeneralArea)
	if err != nil {
		t.Fatalf("AreaByName: %v", err)
	}
	byID, err := r.FindArea(ctx, fmt.Sprint(general.ID))
	if err != nil || byID.Name != GeneralArea {
		t.Fatalf("FindArea by id: %+v, %v", byID, err)
	}
	if _, err := r.FindArea(ctx, "Nope"); !errors.Is(err, ErrAreaNotFound) {
		t.Fatalf("expected ErrAreaNotFound, got %v", err)
	}
}

func TestAddListingRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	r, uid := setup(t)
	general, _ := r.AreaByName(ctx, GeneralArea)
	other, err := r.CreateArea(ctx, "Utilities", "tools")
	if err != nil {
		t.Fatalf("CreateArea: %v", err)
	}

	if _, err := r.AddListing(ctx, general.ID, "zmodem.zip", "transfer tool", uid); err != nil {
		t.Fatalf("AddListing: %v", err)
	}
	if _, err := r.AddListing(ctx, general.ID, "zmodem.zip", "again", uid); !errors.Is(err, ErrDuplicateFilename) {
		t.Fatalf("expected ErrDuplicateFilename, got %v", err)
	}
	// Same filename is fine in another area.
	if _, err := r.AddListing(ctx, other, "zmodem.zip", "copy", uid); err != nil {
		t.Fatalf("AddListing other area: %v", err)
	}
	if _, err := r.AddListing(ctx, general.ID, "arc.exe", "", uid); err != nil {
		t.Fatalf("AddListing: %v", err)
	}

	files, err := r.ListFiles(ctx, general.ID)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 || files[0].Filename != "arc.exe" || files[1].Filename != "zmodem.zip" {
		t.Fatalf("expected listings ordered by filename, got %+v", files)
	}
	if files[0].UploaderName != "sysop" {
		t.Fatalf("expected joined uploader name, got %q", files[0].UploaderName)
	}

	areas, err := r.ListAreas(ctx)
	if err != nil {
		t.Fatalf("ListAreas: %v", err)
	}
	if len(areas) != 2 || areas[0].FileCount != 2 || areas[1].FileCount != 1 {
		t.Fatalf("unexpected areas: %+v", areas)
	}
}

func TestIncrementDownload(t *testing.T) {
	ctx := context.Background()
	r, uid := setup(t)
	general, _ := r.AreaByName(ctx, GeneralArea)

	id, err := r.AddListing(ctx, general.ID, "game.zip", "", uid)
	if err != nil {
		t.Fatalf("AddListing: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.IncrementDownload(ctx, id); err != nil {
			t.Fatalf("IncrementDownload: %v", err)
		}
	}
	if err := r.IncrementDownload(ctx, id+100); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}

	l, err := r.GetListing(ctx, id)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if l.DownloadCount != 3 {
		t.Fatalf("expected 3 downloads, got %d", l.DownloadCount)
	}

	if err := r.UpdateDescription(ctx, id, "a fine game"); err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}
	l, _ = r.GetListing(ctx, id)
	if l.Description != "a fine game" {
		t.Fatalf("unexpected description %q", l.Description)
	}
}
