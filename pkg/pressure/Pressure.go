package pressure

import "syscall"


//=========================================== Resource Pressure


/*
	CalculateDiskStats reports usable/total bytes for the filesystem
	backing path via syscall.Statfs rather than shelling out to `df`.
*/

func CalculateDiskStats(path string) (*DiskStats, error) {
	var stat syscall.Statfs_t
	if statErr := syscall.Statfs(path, &stat); statErr != nil { return nil, statErr }

	blockSize := uint64(stat.Bsize)

	return &DiskStats{
		UsableBytes: int64(stat.Bavail * blockSize),
		TotalBytes: int64(stat.Blocks * blockSize),
	}, nil
}

/*
	CalculateMemStats reports free/total physical memory. MemoryPressure
	only takes it into account when the log or state machine storage is
	in-memory or memory-mapped.
*/

func CalculateMemStats() (*MemStats, error) {
	var info syscall.Sysinfo_t
	if sysErr := syscall.Sysinfo(&info); sysErr != nil { return nil, sysErr }

	unit := uint64(info.Unit)
	if unit == 0 { unit = 1 }

	return &MemStats{
		FreeBytes: info.Freeram * unit,
		TotalBytes: info.Totalram * unit,
	}, nil
}

/*
	DiskPressure reports true when usable space is below five segments'
	worth, or the usable fraction is below the configured buffer.
*/

func DiskPressure(stats *DiskStats, maxSegmentSize int64, freeDiskBuffer float64) bool {
	if stats.TotalBytes <= 0 { return false }

	if stats.UsableBytes < maxSegmentSize*5 { return true }

	fraction := float64(stats.UsableBytes) / float64(stats.TotalBytes)
	return fraction < freeDiskBuffer
}

/*
	MemoryPressure is only meaningful for in-memory/memory-mapped storage
	kinds; on-disk storage never reports memory pressure.
*/

func MemoryPressure(kind StorageKind, stats *MemStats, freeMemoryBuffer float64) bool {
	if kind == OnDisk { return false }
	if stats.TotalBytes <= 0 { return false }

	fraction := float64(stats.FreeBytes) / float64(stats.TotalBytes)
	return fraction < freeMemoryBuffer
}
