// Package scanner walks directory trees and collects the source files a
// rewrite run should visit.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir    string
	extensions []string
	excluded   []string
}

func New(rootDir string, extensions ...string) *Scanner {
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Exclude adds paths whose contents the scan skips entirely. Directories
// are pruned without descending into them.
func (s *Scanner) Exclude(paths ...string) *Scanner {
	for _, p := range paths {
		if p == "" {
			continue
		}
		s.excluded = append(s.excluded, filepath.Clean(p))
	}
	return s
}

// Scan returns the matching files under the root in path order.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var (
		files []FileInfo
		mutex sync.Mutex
		wg    sync.WaitGroup
	)

	err := filepath.Walk(s.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if s.isExcluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isTargetFile(path) && !s.isExcluded(path) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fileInfo := FileInfo{
					Path: path,
					Size: info.Size(),
				}
				mutex.Lock()
				files = append(files, fileInfo)
				mutex.Unlock()
			}()
		}
		return nil
	})

	wg.Wait()
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}

func (s *Scanner) isExcluded(path string) bool {
	for _, ex := range s.excluded {
		rel, err := filepath.Rel(ex, path)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}
