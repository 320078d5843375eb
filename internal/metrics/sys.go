package metrics

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var startedAt = time.Now()

// SysHealth is a snapshot of the process and its data files.
type SysHealth struct {
	Uptime       time.Duration
	AllocMB      uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DatabaseSize string
	CatalogSize  string
	CatalogFiles int
}

// GetSysHealth collects runtime statistics and the size of the database
// (including its WAL files) and of the YAML catalog.
func GetSysHealth(databasePath, catalogPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var dbBytes uint64
	for _, p := range []string{databasePath, databasePath + "-wal", databasePath + "-shm"} {
		if info, err := os.Stat(p); err == nil {
			dbBytes += uint64(info.Size())
		}
	}
	catalogBytes, catalogFiles := catalogUsage(catalogPath)

	return SysHealth{
		Uptime:       time.Since(startedAt).Round(time.Second),
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DatabaseSize: humanize.IBytes(dbBytes),
		CatalogSize:  humanize.IBytes(catalogBytes),
		CatalogFiles: catalogFiles,
	}
}

func catalogUsage(root string) (uint64, int) {
	var size uint64
	var files int
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += uint64(info.Size())
			files++
		}
		return nil
	})
	return size, files
}
