package chainstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"
)

// calculateDirectorySize calculates the total size of files within a directory
func calculateDirectorySize(path string) (size int64, err error) {
	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return
}

// logDiskUsage logs the disk usage information using structured logging
func logDiskUsage(paths []string) error {
	for _, path := range paths {
		usage, err := disk.Usage(path)
		if err != nil {
			log.WithFields(logrus.Fields{
				"path": path,
			}).Errorf("Error retrieving disk usage stats: %v", err)
			return err
		}

		pathSize, err := calculateDirectorySize(path)
		if err != nil {
			log.WithFields(logrus.Fields{
				"path": path,
			}).Errorf("Error calculating directory size: %v", err)
			return err
		}
		pathUsage := float64(pathSize) / 1e9

		log.WithFields(logrus.Fields{
			"Path":        path,
			"Filesystem":  usage.Fstype,
			"Total (GB)":  fmt.Sprintf("%.2f", float64(usage.Total)/1e9),
			"Used (GB)":   fmt.Sprintf("%.2f", float64(usage.Used)/1e9),
			"Free (GB)":   fmt.Sprintf("%.2f", float64(usage.Free)/1e9),
			"Usage by DB": fmt.Sprintf("%.2f", pathUsage),
		}).Info("Disk Usage")
	}

	return nil
}
