package rrd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Drawable is a graph definition that can be rendered by rrdtool.
type Drawable interface {
	// GraphIndex identifies the graph among its siblings; it becomes part of the file name.
	GraphIndex() int
	// GraphOptions returns rrdtool options such as --title and --vertical-label.
	GraphOptions() string
	// GraphBody returns the concatenated DEF/AREA/LINE/HRULE/GPRINT directives.
	GraphBody() string
}

// Drawer renders graph definitions to PNG files with rrdtool.
type Drawer struct {
	graphDir    string   // Root directory for generated images
	timeLengths []string // Time ranges to draw (e.g., "4h" "1d")
	width       int
	height      int
	logger      *logrus.Logger

	// run executes rrdtool; replaced in tests.
	run func(ctx context.Context, args []string) ([]byte, error)
}

// NewDrawer creates a Drawer writing under {graphDir}/imgs/.
//
// Parameters:
//   - graphDir: The directory where the graphs should be stored.
//   - timeLengths: The time ranges to draw each graph for (e.g., "4h", "1w").
//   - width, height: Canvas size passed to rrdtool.
//   - logger: The logger instance.
func NewDrawer(graphDir string, timeLengths []string, width int, height int, logger *logrus.Logger) (*Drawer, error) {
	if len(timeLengths) == 0 {
		return nil, fmt.Errorf("at least one time length is required")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid graph size %dx%d", width, height)
	}

	// verify graphDir exists
	if _, err := os.Stat(graphDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory %s does not exist", graphDir)
	}

	return &Drawer{
		graphDir:    graphDir,
		timeLengths: timeLengths,
		width:       width,
		height:      height,
		logger:      logger,
		run:         runRRDTool,
	}, nil
}

func runRRDTool(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "rrdtool", args...)
	return cmd.CombinedOutput()
}

// FilePath returns where the graph with the given index and time length is written.
func (d *Drawer) FilePath(host string, service string, index int, timeLength string) string {
	h := fileSafe(host)
	name := fmt.Sprintf("%s_%s_%d_%s.png", h, fileSafe(service), index, timeLength)
	return filepath.Join(d.graphDir, "imgs", h, name)
}

// Draw renders g once per configured time length and returns the written
// file paths. A failure for one time length is logged and the remaining
// lengths are still attempted; the first error is returned.
func (d *Drawer) Draw(ctx context.Context, host string, service string, g Drawable) ([]string, error) {
	opts, err := SplitArgs(g.GraphOptions())
	if err != nil {
		return nil, fmt.Errorf("graph %d options: %w", g.GraphIndex(), err)
	}
	body, err := SplitArgs(g.GraphBody())
	if err != nil {
		return nil, fmt.Errorf("graph %d body: %w", g.GraphIndex(), err)
	}

	dirPath := filepath.Join(d.graphDir, "imgs", fileSafe(host))
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}

	var (
		written  []string
		firstErr error
	)
	for _, tl := range d.timeLengths {
		filePath := d.FilePath(host, service, g.GraphIndex(), tl)

		args := []string{
			"graph", filePath,
			"--start", fmt.Sprintf("now-%s", tl),
			"--end", "now",
			"--width", strconv.Itoa(d.width),
			"--height", strconv.Itoa(d.height),
		}
		args = append(args, opts...)
		args = append(args, "COMMENT:"+escapeLegend(fmt.Sprintf("last %s", expandTimeLength(tl)))+`\n`)
		args = append(args, body...)

		d.logger.Debugf("Drawing graph %d for %s/%s over %s.", g.GraphIndex(), host, service, tl)
		output, err := d.run(ctx, args)
		if err != nil {
			err = fmt.Errorf("rrdtool graph failed for %s: %w\nOutput: %s", filePath, err, string(output))
			d.logger.Errorf("Failed to draw graph %d for %s/%s: %v", g.GraphIndex(), host, service, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		d.logger.Debugf("Graph drawn successfully: %s", filePath)
		written = append(written, filePath)
	}

	return written, firstErr
}
