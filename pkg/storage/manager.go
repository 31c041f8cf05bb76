package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/cupcakery/storefront/config"
	"github.com/cupcakery/storefront/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the local disk and, when S3_BUCKET is set, the s3 disk.
// STORAGE_DISK picks the default; an unavailable s3 disk falls back to local.
func Connect(ctx context.Context) {
	local := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	RegisterDisk("local", local)

	name := config.StorageDefault()
	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk(ctx)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			RegisterDisk("s3", d)
		}
	}

	managerMu.Lock()
	defer managerMu.Unlock()
	if _, ok := disks[name]; !ok {
		logger.Warn("storage: default disk unavailable, using local", "disk", name)
		name = "local"
	}
	defaultDisk = name
}

// Use returns the named disk.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk plugs in a disk under name.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// SetDefault makes name the default disk. Tests use it with RegisterDisk.
func SetDefault(name string) {
	managerMu.Lock()
	defaultDisk = name
	managerMu.Unlock()
}

// Default returns the default disk, booting a local disk on first use if
// Connect was never called.
func Default() Disk {
	managerMu.RLock()
	d, ok := disks[defaultDisk]
	managerMu.RUnlock()
	if ok {
		return d
	}

	local := NewLocalDisk(config.StorageLocalRoot(), config.StorageURL())
	RegisterDisk("local", local)
	SetDefault("local")
	return local
}

// URL returns the public URL for p on the default disk; empty p gives "".
func URL(p string) string {
	if p == "" {
		return ""
	}
	return Default().URL(p)
}
