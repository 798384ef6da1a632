package pipeline

import "sync"

var (
	defaultOnce sync.Once
	defaultExt  *Extractor
)

func defaultExtractor() *Extractor {
	defaultOnce.Do(func() {
		defaultExt = NewExtractor(nil, nil)
	})
	return defaultExt
}
