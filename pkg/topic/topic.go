// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package topic implements MQTT-style topic and filter handling
package topic

import (
	"errors"
	"strings"
)

// Topic constants
const (
	Separator      = "/"
	Wildcard       = "#"
	PartWildcard   = "+"
	InternalPrefix = "$"
)

// Split a topic or filter into its segments
func Split(s string) []string {
	return strings.Split(s, Separator)
}

// Join segments into a topic or filter
func Join(path []string) string {
	return strings.Join(path, Separator)
}

// ValidateTopic checks that a topic name can be published to.
// Topic names must be non-empty, must not contain the NUL character
// and must not contain wildcard characters.
func ValidateTopic(s string) error {
	if len(s) == 0 {
		return errors.New("empty topic")
	}
	if strings.ContainsRune(s, 0) {
		return errors.New("topic contains NUL character")
	}
	if strings.ContainsAny(s, Wildcard+PartWildcard) {
		return errors.New("topic contains wildcard characters")
	}
	return nil
}

// ValidateFilter checks that a filter can be subscribed to.
// Filters must be non-empty and must not contain the NUL character.
// Wildcards must occupy an entire segment, and "#" must be the last one.
func ValidateFilter(s string) error {
	if len(s) == 0 {
		return errors.New("empty filter")
	}
	if strings.ContainsRune(s, 0) {
		return errors.New("filter contains NUL character")
	}
	path := Split(s)
	for i, part := range path {
		switch {
		case strings.Contains(part, PartWildcard) && part != PartWildcard:
			return errors.New(`"+" must occupy an entire segment`)
		case strings.Contains(part, Wildcard) && part != Wildcard:
			return errors.New(`"#" must occupy an entire segment`)
		case part == Wildcard && i != len(path)-1:
			return errors.New(`"#" must be the last segment`)
		}
	}
	return nil
}

// Match a topic to a filter
func Match(topic, filter string) bool {
	return MatchPath(Split(topic), Split(filter))
}

// MatchPath matches a separated topic to a separated filter.
// Wildcards never match a topic of which the first segment starts with "$".
// "#" also matches the parent level, so the filter "a/#" matches the topic "a".
func MatchPath(topicPath, filterPath []string) bool {
	if strings.HasPrefix(topicPath[0], InternalPrefix) &&
		(filterPath[0] == PartWildcard || filterPath[0] == Wildcard) {
		return false
	}
	for i, part := range filterPath {
		if part == Wildcard {
			return true
		}
		if i >= len(topicPath) {
			return false
		}
		if part != PartWildcard && part != topicPath[i] {
			return false
		}
	}
	return len(topicPath) == len(filterPath)
}
