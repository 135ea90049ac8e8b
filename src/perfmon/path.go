package perfmon

import "strings"

// CounterPath is a PerfMon counter name broken into its parts:
// \\HOST\Object(Instance)\Counter
type CounterPath struct {
	Host     string
	Object   string
	Instance string
	Counter  string
}

// SplitCounterPath splits a full counter name. Names that are not PerfMon
// paths come back with only Counter set.
func SplitCounterPath(name string) CounterPath {
	s := strings.TrimSpace(name)
	var path CounterPath

	if strings.HasPrefix(s, `\\`) {
		rest := s[2:]
		idx := strings.Index(rest, `\`)
		if idx < 0 {
			path.Host = rest
			path.Counter = rest
			return path
		}
		path.Host = rest[:idx]
		s = rest[idx:]
	}

	var parts []string
	for _, p := range strings.Split(s, `\`) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		path.Counter = strings.TrimSpace(name)
		return path
	case 1:
		path.Counter = parts[0]
		return path
	}

	objectPart := parts[len(parts)-2]
	path.Counter = parts[len(parts)-1]
	path.Object = objectPart

	// "GPU Engine(pid_1234_engtype_3D)" -> object "GPU Engine", instance "pid_1234_engtype_3D"
	if open := strings.Index(objectPart, "("); open > 0 && strings.HasSuffix(objectPart, ")") {
		path.Object = strings.TrimSpace(objectPart[:open])
		path.Instance = objectPart[open+1 : len(objectPart)-1]
	}
	return path
}

// ShortName is the counter label shown in tables: "Counter" or
// "Counter (Instance)" when an instance is present.
func (p CounterPath) ShortName() string {
	if p.Instance == "" {
		return p.Counter
	}
	return p.Counter + " (" + p.Instance + ")"
}
