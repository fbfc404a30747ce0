package compare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/itohio/golttb/pkg/config"
	"github.com/itohio/golttb/pkg/lttb"
	"github.com/itohio/golttb/pkg/motion"
	"github.com/sirupsen/logrus"
)

// Result is the outcome for one percentage.
type Result struct {
	Percent   int
	Target    int
	Selected  []motion.Point
	Reference string     // Empty when no reference file exists for Percent
	Agreement *Agreement // Nil when Reference is empty
}

// Report collects the results of a comparison run.
type Report struct {
	Original string
	Channel  motion.Channel
	Points   int
	Results  []Result
}

func logger(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}

// loadOriginal reads cfg.Data.Original and logs its size.
func loadOriginal(cfg *config.Config, log logrus.FieldLogger) ([]motion.Record, error) {
	info, err := os.Stat(cfg.Data.Original)
	if err != nil {
		return nil, fmt.Errorf("failed to stat original data: %w", err)
	}

	records, err := motion.ReadFile(cfg.Data.Original)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"file":    cfg.Data.Original,
		"size":    humanize.Bytes(uint64(info.Size())),
		"records": humanize.Comma(int64(len(records))),
	}).Info("loaded original data")

	return records, nil
}

// Run downsamples the configured channel of the original data for every
// percentage and compares each result with the matching reference file.
func Run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Report, error) {
	log = logger(log)

	channel, err := motion.ParseChannel(cfg.Channel)
	if err != nil {
		return nil, err
	}

	records, err := loadOriginal(cfg, log)
	if err != nil {
		return nil, err
	}
	series := motion.Column(records, channel)

	references, err := Discover(cfg.Data.Reference, log)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Original: cfg.Data.Original,
		Channel:  channel,
		Points:   len(series),
		Results:  make([]Result, 0, len(cfg.Percentages)),
	}

	for _, percent := range cfg.Percentages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m := motion.TargetFromPercent(len(series), percent)
		selected, err := lttb.Downsample(series, m)
		if err != nil {
			return nil, fmt.Errorf("downsample %d%%: %w", percent, err)
		}

		result := Result{Percent: percent, Target: m, Selected: selected}
		entry := log.WithField("percent", percent).WithField("target", m)

		if path, ok := references[percent]; ok {
			refRecords, err := motion.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reference %d%%: %w", percent, err)
			}
			agreement := Compare(motion.Values(selected), motion.Values(motion.Column(refRecords, channel)))

			result.Reference = path
			result.Agreement = &agreement
			entry = entry.WithField("reference", path).WithField("matched", fmt.Sprintf("%.1f%%", agreement.Ratio()*100))
			if !agreement.Identical() {
				entry.WithField("first_mismatch", agreement.FirstMismatch).Warn("reference disagrees")
			} else {
				entry.Info("reference agrees")
			}
		} else {
			entry.Debug("no reference file")
		}

		report.Results = append(report.Results, result)
	}

	return report, nil
}

// Export writes every channel of the original data downsampled to each ratio
// into cfg.Data.OutputDir as downsampled_<percent>.dat and returns the paths.
func Export(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) ([]string, error) {
	log = logger(log)

	records, err := loadOriginal(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Data.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(cfg.Ratios))
	for _, ratio := range cfg.Ratios {
		m := motion.TargetFromRatio(len(records), ratio)
		out, err := motion.DownsampleChannels(ctx, records, m)
		if err != nil {
			return nil, fmt.Errorf("downsample ratio %v: %w", ratio, err)
		}

		name := fmt.Sprintf("downsampled_%d.dat", config.RatioPercent(ratio))
		path := filepath.Join(cfg.Data.OutputDir, name)
		if err := motion.WriteFile(path, out); err != nil {
			return nil, err
		}

		log.WithFields(logrus.Fields{
			"file":    path,
			"records": humanize.Comma(int64(len(out))),
			"size":    humanize.Bytes(uint64(len(out) * motion.RecordSize)),
		}).Info("downsampled data saved")
		paths = append(paths, path)
	}

	return paths, nil
}

// String renders the report as a table, highest percentage first.
func (r *Report) String() string {
	results := append([]Result(nil), r.Results...)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Percent > results[j].Percent })

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s channel %s, %s points\n", r.Original, r.Channel, humanize.Comma(int64(r.Points)))

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "percent\tpoints\treference\tmatched\tfirst mismatch")
	for _, res := range results {
		if res.Agreement == nil {
			fmt.Fprintf(w, "%d%%\t%d\t-\t-\t-\n", res.Percent, res.Target)
			continue
		}
		mismatch := "-"
		if res.Agreement.FirstMismatch >= 0 {
			mismatch = fmt.Sprint(res.Agreement.FirstMismatch)
		}
		fmt.Fprintf(w, "%d%%\t%d\t%s\t%.1f%%\t%s\n",
			res.Percent, res.Target, filepath.Base(res.Reference), res.Agreement.Ratio()*100, mismatch)
	}
	w.Flush()

	return sb.String()
}
