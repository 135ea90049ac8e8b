package perfmon

import (
	"testing"

	"github.com/longbridgeapp/assert"
)

func TestSplitCounterPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  CounterPath
		short string
	}{
		{
			name:  "full path with instance",
			input: `\\DESKTOP-01\Processor(_Total)\% Processor Time`,
			want:  CounterPath{Host: "DESKTOP-01", Object: "Processor", Instance: "_Total", Counter: "% Processor Time"},
			short: "% Processor Time (_Total)",
		},
		{
			name:  "full path without instance",
			input: `\\DESKTOP-01\Memory\Available MBytes`,
			want:  CounterPath{Host: "DESKTOP-01", Object: "Memory", Counter: "Available MBytes"},
			short: "Available MBytes",
		},
		{
			name:  "instance containing parentheses",
			input: `\\H\GPU Engine(pid_1_engtype_3D)\Utilization Percentage`,
			want:  CounterPath{Host: "H", Object: "GPU Engine", Instance: "pid_1_engtype_3D", Counter: "Utilization Percentage"},
			short: "Utilization Percentage (pid_1_engtype_3D)",
		},
		{
			name:  "no host",
			input: `\PhysicalDisk(0 C:)\Disk Reads/sec`,
			want:  CounterPath{Object: "PhysicalDisk", Instance: "0 C:", Counter: "Disk Reads/sec"},
			short: "Disk Reads/sec (0 C:)",
		},
		{
			name:  "plain name",
			input: "% CPU Usage",
			want:  CounterPath{Counter: "% CPU Usage"},
			short: "% CPU Usage",
		},
		{
			name:  "host only",
			input: `\\HOST`,
			want:  CounterPath{Host: "HOST", Counter: "HOST"},
			short: "HOST",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := SplitCounterPath(test.input)
			assert.Equal(t, test.want, got)
			assert.Equal(t, test.short, got.ShortName())
		})
	}
}
