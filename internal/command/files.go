package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/filearea"
)

const (
	uploadUsage   = "Usage: UPLOADINFO <area> <filename>///[description]"
	fileDescUsage = "Usage: FILEDESC <id>///<description>"
)

func (d *Dispatcher) cmdListFileAreas(ctx context.Context, c *call) string {
	areas, err := d.Files.ListAreas(ctx)
	if err != nil {
		return d.fail(c, err)
	}
	if len(areas) == 0 {
		return "No file areas available."
	}

	var b strings.Builder
	b.WriteString("File areas:")
	for _, a := range areas {
		fmt.Fprintf(&b, "\n  [%d] %s", a.ID, a.Name)
		if a.Description != "" {
			b.WriteString(" - " + a.Description)
		}
		fmt.Fprintf(&b, " (%d %s)", a.FileCount, plural(a.FileCount, "file", "files"))
	}
	return b.String()
}

func (d *Dispatcher) cmdListFiles(ctx context.Context, c *call) string {
	ref := strings.TrimSpace(c.rest)

	var (
		area *filearea.Area
		err  error
	)
	if ref == "" {
		area, err = d.Files.AreaByName(ctx, filearea.GeneralArea)
		if errors.Is(err, filearea.ErrAreaNotFound) {
			return "The default file area is missing. Specify one: LISTFILES <area>"
		}
	} else {
		area, err = d.Files.FindArea(ctx, ref)
		if errors.Is(err, filearea.ErrAreaNotFound) {
			return "File area not found."
		}
	}
	if err != nil {
		return d.fail(c, err)
	}

	files, err := d.Files.ListFiles(ctx, area.ID)
	if err != nil {
		return d.fail(c, err)
	}
	if len(files) == 0 {
		return fmt.Sprintf("No files in %s.", area.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Files in %s:", area.Name)
	for _, f := range files {
		fmt.Fprintf(&b, "\n  [%d] %s", f.ID, f.Filename)
		if f.Description != "" {
			b.WriteString(" - " + f.Description)
		}
		fmt.Fprintf(&b, " (uploaded by %s on %s, %d %s)",
			f.UploaderName, f.UploadDate.Local().Format(TimeFormat),
			f.DownloadCount, plural(f.DownloadCount, "download", "downloads"))
	}
	return b.String()
}

func (d *Dispatcher) cmdUploadInfo(ctx context.Context, c *call) string {
	prefix, desc, _ := CutSeparator(c.rest)
	desc = sanitize(strings.TrimSpace(desc))
	if len(strings.Fields(prefix)) < 2 {
		return uploadUsage
	}
	if err := validateLength(desc, "description", MaxBodyLen); err != nil {
		return "Invalid description: " + err.Error() + "."
	}

	area, filename, err := d.splitAreaFilename(ctx, prefix)
	if err != nil {
		if errors.Is(err, filearea.ErrAreaNotFound) {
			return "File area not found."
		}
		return d.fail(c, err)
	}
	if filename == "" {
		return uploadUsage
	}
	if err := validateFilename(filename); err != nil {
		return "Invalid filename: " + err.Error() + "."
	}

	id, err := d.Files.AddListing(ctx, area.ID, filename, desc, c.sess.Identity().UserID)
	if err != nil {
		if errors.Is(err, filearea.ErrDuplicateFilename) {
			return "A file named " + filename + " already exists in this area."
		}
		return d.fail(c, err)
	}
	d.log.Info("file listing added",
		zap.String("area", area.Name), zap.String("filename", filename), zap.Int("id", id))
	return fmt.Sprintf("Added %s to %s (file id %d).", filename, area.Name, id)
}

// splitAreaFilename resolves the area named by the longest run of leading
// tokens in prefix that matches one, so multi-word area names work. The
// remaining text is the filename.
func (d *Dispatcher) splitAreaFilename(ctx context.Context, prefix string) (*filearea.Area, string, error) {
	for n := len(strings.Fields(prefix)) - 1; n >= 1; n-- {
		words, rest := Fields(prefix, n)
		area, err := d.Files.FindArea(ctx, strings.Join(words, " "))
		if errors.Is(err, filearea.ErrAreaNotFound) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return area, strings.TrimSpace(rest), nil
	}
	return nil, "", filearea.ErrAreaNotFound
}

func (d *Dispatcher) cmdFileDesc(ctx context.Context, c *call) string {
	idPart, desc, found := CutSeparator(c.rest)
	desc = sanitize(strings.TrimSpace(desc))
	if !found || desc == "" {
		return fileDescUsage
	}
	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil {
		return fileDescUsage
	}
	if err := validateLength(desc, "description", MaxBodyLen); err != nil {
		return "Invalid description: " + err.Error() + "."
	}

	listing, err := d.Files.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, filearea.ErrListingNotFound) {
			return "File not found."
		}
		return d.fail(c, err)
	}
	if listing.UploaderID != c.sess.Identity().UserID && !c.sess.IsSysop() {
		return "Access denied. Only the uploader or a sysop can change this description."
	}

	if err := d.Files.UpdateDescription(ctx, id, desc); err != nil {
		if errors.Is(err, filearea.ErrListingNotFound) {
			return "File not found."
		}
		return d.fail(c, err)
	}
	return fmt.Sprintf("Description for %s updated.", listing.Filename)
}

func (d *Dispatcher) cmdDownloadInfo(ctx context.Context, c *call) string {
	if len(c.args) != 1 {
		return "Usage: DOWNLOADINFO <id>"
	}
	id, err := strconv.Atoi(c.args[0])
	if err != nil {
		return "Usage: DOWNLOADINFO <id>"
	}

	listing, err := d.Files.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, filearea.ErrListingNotFound) {
			return "File not found."
		}
		return d.fail(c, err)
	}
	if err := d.Files.IncrementDownload(ctx, id); err != nil {
		if errors.Is(err, filearea.ErrListingNotFound) {
			return "File not found."
		}
		return d.fail(c, err)
	}

	count := listing.DownloadCount + 1
	return fmt.Sprintf("Transfer of %s started (simulated). It has now been downloaded %d %s.",
		listing.Filename, count, plural(count, "time", "times"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
