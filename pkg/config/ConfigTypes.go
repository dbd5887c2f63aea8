package config

import "time"

import "github.com/coldharbor/rsm/pkg/pressure"


//=========================================== Config


/*
	Config threads every tunable through construction, per the design note
	on global mutable configuration: no process-wide singleton, no
	package-level var holding thresholds.
*/

type Config struct {
	DataDir string `yaml:"data_dir"`

	StorageKind pressure.StorageKind `yaml:"storage_kind"`

	MaxSegmentSize int64 `yaml:"max_segment_size"`
	FreeDiskBuffer float64 `yaml:"free_disk_buffer"`
	FreeMemoryBuffer float64 `yaml:"free_memory_buffer"`

	DynamicCompactionEnabled bool `yaml:"dynamic_compaction_enabled"`

	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	CompletionCheckInterval time.Duration `yaml:"completion_check_interval"`
	SnapshotCompletionTimeout time.Duration `yaml:"snapshot_completion_timeout"`
	CompactionDesyncDelay time.Duration `yaml:"compaction_desync_delay"`

	LoadMonitorWindow time.Duration `yaml:"load_monitor_window"`
	LoadMonitorThreshold float64 `yaml:"load_monitor_threshold"`

	QueryVersionPollInterval time.Duration `yaml:"query_version_poll_interval"`
	QueryVersionWaitTimeout time.Duration `yaml:"query_version_wait_timeout"`

	MetricsPort int `yaml:"metrics_port"`
}

func Default() *Config {
	return &Config{
		DataDir: ".",
		StorageKind: pressure.OnDisk,
		MaxSegmentSize: 64 * 1024 * 1024,
		FreeDiskBuffer: 0.1,
		FreeMemoryBuffer: 0.1,
		DynamicCompactionEnabled: true,
		SnapshotInterval: 10 * time.Second,
		CompletionCheckInterval: 10 * time.Second,
		SnapshotCompletionTimeout: 5 * time.Minute,
		CompactionDesyncDelay: 10 * time.Second,
		LoadMonitorWindow: 5 * time.Second,
		LoadMonitorThreshold: 50.0,
		QueryVersionPollInterval: 20 * time.Millisecond,
		QueryVersionWaitTimeout: 5 * time.Second,
		MetricsPort: 9090,
	}
}
