package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// mariaDBRPLHackPrefix is the "5.5.5-" prefix MariaDB servers stamp onto
// their version string for replication compatibility with old MySQL
// clients that only understand the 5.x series.
const mariaDBRPLHackPrefix = "5.5.5-"

// ServerVersion is the parsed major.minor.patch of the server's version
// string, along with whether the server identifies as MariaDB.
type ServerVersion struct {
	Major     uint16
	Minor     uint16
	Patch     uint16
	IsMariaDB bool
}

// ParseServerVersion parses the human-readable version string sent in the
// initial handshake packet, stripping MariaDB's RPL-hack prefix first.
// The string must have the form "major.minor.patch[-suffix]"; anything
// else is rejected.
func ParseServerVersion(version string) (ServerVersion, error) {
	isMariaDB := strings.HasPrefix(version, mariaDBRPLHackPrefix) || strings.Contains(version, "MariaDB")

	if stripped, ok := strings.CutPrefix(version, mariaDBRPLHackPrefix); ok {
		version = stripped
	}

	parts := strings.SplitN(version, ".", 3)
	if len(parts) != 3 {
		return ServerVersion{}, fmt.Errorf("protocol: %q is not a major.minor.patch version string", version)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return ServerVersion{}, fmt.Errorf("protocol: parsing major version: %w", err)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return ServerVersion{}, fmt.Errorf("protocol: parsing minor version: %w", err)
	}

	patchPart, _, _ := strings.Cut(parts[2], "-")
	patch, err := strconv.ParseUint(patchPart, 10, 16)
	if err != nil {
		return ServerVersion{}, fmt.Errorf("protocol: parsing patch version: %w", err)
	}

	return ServerVersion{
		Major:     uint16(major),
		Minor:     uint16(minor),
		Patch:     uint16(patch),
		IsMariaDB: isMariaDB,
	}, nil
}

// String formats the version the way it's usually quoted in logs: "major.minor.patch".
func (v ServerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
