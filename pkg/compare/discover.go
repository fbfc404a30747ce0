package compare

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Discover maps percentages to the files matching pattern. The percentage is
// the text after the last '-' or '_' of the base name, e.g. motion-20.dat -> 20
// and downsampled_5.dat -> 5.
// Files that don't carry a percentage are skipped.
func Discover(pattern string, log logrus.FieldLogger) (map[int]string, error) {
	log = logger(log)

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid reference pattern %q: %w", pattern, err)
	}

	files := make(map[int]string, len(matches))
	for _, path := range matches {
		percent, ok := percentOf(path)
		if !ok {
			log.WithField("file", path).Warn("skipping reference file without percentage")
			continue
		}
		if prev, dup := files[percent]; dup {
			log.WithField("file", path).WithField("kept", prev).Warn("duplicate reference percentage")
			continue
		}
		files[percent] = path
	}
	return files, nil
}

func percentOf(path string) (int, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	i := strings.LastIndexAny(base, "-_")
	if i < 0 {
		return 0, false
	}
	p, err := strconv.Atoi(base[i+1:])
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}
