package assemble

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/planum-obs/viking/band"
	"github.com/planum-obs/viking/log"
)

// prospectiveName matches the file names Viking band files were
// distributed under: vl_<tape>.<ordinal with three digits>.
var prospectiveName = regexp.MustCompile(`vl_[^/\\]*\.[0-9][0-9][0-9]$`)

// ProgressFunc is called as the assembler moves through its phases, with
// the count of items handled so far and the total. Progress bridges
// (launchers, notification daemons) subscribe here.
type ProgressFunc func(phase string, done, total int)

// Summary is the accounting of one run.
type Summary struct {
	Examined      int // prospective files decoded
	Skipped       int // bands dropped by filters or, when tolerated, by errors
	Attempted     int // camera events considered for reconstruction
	Reconstructed int // events written as a colour or grayscale image
	DumpedEvents  int // events not reconstructed: dump mode or a tolerated reconstruction error
	DumpedBands   int // standalone bands written during dumps
}

// Assembler catalogues a tree of band files by camera event and
// reconstructs each event into the output directory.
type Assembler struct {
	inputRoot  string
	outputRoot string
	opts       *Options

	// Progress, when set, is invoked during cataloguing and recovery.
	Progress ProgressFunc

	catalogue map[string]*ReconstructableImage
}

// New prepares an assembler over the given input file or directory.
// An empty output root means the current working directory.
func New(input, outputDir string, opts *Options) *Assembler {
	if outputDir == "" {
		outputDir = "."
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Assembler{
		inputRoot:  input,
		outputRoot: outputDir,
		opts:       opts,
	}
}

// Catalogue returns the events indexed by the last run, keyed by camera
// event label.
func (a *Assembler) Catalogue() map[string]*ReconstructableImage {
	return a.catalogue
}

func (a *Assembler) progress(phase string, done, total int) {
	if a.Progress != nil {
		a.Progress(phase, done, total)
	}
}

// index enumerates the prospective band files under the input root,
// descending into zip archives.
func (a *Assembler) index() ([]string, error) {
	info, err := os.Stat(a.inputRoot)
	if err != nil {
		return nil, fmt.Errorf("could not stat %s: %w", a.inputRoot, err)
	}
	var files []string
	if info.IsDir() {
		files, err = a.indexDirectory(a.inputRoot, true)
	} else {
		files, err = a.indexFile(a.inputRoot)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (a *Assembler) indexDirectory(dir string, isRoot bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to open input directory for indexing %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if !a.opts.Recursive {
				continue
			}
			sub, err := a.indexDirectory(path, false)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		found, err := a.indexFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func (a *Assembler) indexFile(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return a.indexArchive(path)
	}
	if prospectiveName.MatchString(path) {
		return []string{path}, nil
	}
	return nil, nil
}

// indexArchive lists an archive's band files as archive.zip:/member
// references; each is later opened through its own fresh handle.
func (a *Assembler) indexArchive(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive for indexing %s: %w", path, err)
	}
	defer zr.Close()

	var files []string
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if prospectiveName.MatchString(member.Name) {
			files = append(files, path+":/"+member.Name)
		}
	}
	return files, nil
}

// BuildCatalogue indexes the input and decodes every prospective band
// into the camera event catalogue, without reconstructing anything.
// A band error aborts unless ignore-bad-files is set, in which case it
// is logged and skipped. Filtered bands are silently excluded either way.
func (a *Assembler) BuildCatalogue() (Summary, error) {
	var summary Summary
	a.catalogue = make(map[string]*ReconstructableImage)

	log.Info("preparing catalogue, please wait")
	files, err := a.index()
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		log.Info("no prospective files found")
		return summary, nil
	}

	diodeFilter, err := a.opts.DiodeFilterSet()
	if err != nil {
		return summary, err
	}
	decodeOpts := a.opts.decodeOptions()

	for i, path := range files {
		a.progress("catalogue", i+1, len(files))

		b := band.New(path)
		b.Load(decodeOpts)
		summary.Examined++

		if err := b.Err(); err != nil {
			if errors.Is(err, band.ErrFiltered) {
				log.Debug("filtered", log.F("file", b.FileName), log.F("reason", err))
				summary.Skipped++
				continue
			}
			if a.opts.IgnoreBadFiles {
				log.Warn("skipping bad file", log.F("file", b.FileName), log.F("error", err))
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("%s: %w (--ignore-bad-files to skip)", b.FileName, err)
		}

		if diodeFilter != nil && !diodeFilter[b.Diode] {
			log.Debug("filtering diode band type",
				log.F("file", b.FileName), log.F("diode", b.Diode.String()))
			summary.Skipped++
			continue
		}

		if !b.HasCameraEvent() {
			log.Error("camera event doesn't identify itself, cannot index",
				log.F("file", b.FileName))
			summary.Skipped++
			continue
		}

		ri, ok := a.catalogue[b.CameraEventLabel]
		if !ok {
			log.Debug("new camera event", log.F("label", b.CameraEventLabel))
			ri, err = NewReconstructableImage(a.outputRoot, b.CameraEventLabel)
			if err != nil {
				if a.opts.IgnoreBadFiles {
					log.Warn("skipping band", log.F("file", b.FileName), log.F("error", err))
					summary.Skipped++
					continue
				}
				return summary, err
			}
			a.catalogue[b.CameraEventLabel] = ri
		}

		ri.AddBand(b)
		if err := ri.Err(); err != nil {
			if a.opts.IgnoreBadFiles {
				log.Warn("skipping band", log.F("file", b.FileName), log.F("error", err))
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("%s: %w (--ignore-bad-files to skip)", b.FileName, err)
		}
	}
	return summary, nil
}

// Run catalogues the input and reconstructs every camera event found.
// Event errors abort or skip under the same ignore-bad-files policy as
// band errors.
func (a *Assembler) Run() (Summary, error) {
	summary, err := a.BuildCatalogue()
	if err != nil {
		return summary, err
	}

	// Recover each event. Walk the labels in order so output and
	// failure reporting are deterministic.
	labels := make([]string, 0, len(a.catalogue))
	for label := range a.catalogue {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		ri := a.catalogue[label]
		summary.Attempted++
		a.progress("recover", summary.Attempted, len(labels))

		reconstructed, err := ri.Reconstruct(a.opts)
		if reconstructed {
			summary.Reconstructed++
			continue
		}

		summary.DumpedEvents++
		summary.DumpedBands += ri.DumpedCount
		if err != nil {
			if !a.opts.IgnoreBadFiles {
				return summary, fmt.Errorf("%s: %w (--ignore-bad-files to skip)", label, err)
			}
			log.Warn("skipping event", log.F("event", label), log.F("error", err))
		}
	}

	log.Info("recovery finished",
		log.F("attempted", summary.Attempted),
		log.F("reconstructed", summary.Reconstructed),
		log.F("dumped_bands", summary.DumpedBands))
	return summary, nil
}
