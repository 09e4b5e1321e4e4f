// Copyright © 2018 The Things Industries, distributed under the MIT license (see LICENSE file)

// Package trie implements a trie of topic filters.
//
// The trie keeps one node per filter segment, so filters that share a prefix
// share nodes, and matching a published topic visits only the branches that
// can still match instead of scanning every registered filter.
package trie

import (
	"errors"
	"strings"

	"github.com/TheThingsIndustries/topictree/pkg/topic"
)

// ErrNotFound is returned by Delete when the exact filter is not in the trie.
var ErrNotFound = errors.New("filter not found")

type node[V any] struct {
	children map[string]*node[V]
	value    *V
}

func newNode[V any]() *node[V] {
	return &node[V]{children: make(map[string]*node[V])}
}

// Trie maps topic filters to values of type V.
//
// A Trie is not safe for concurrent use; callers that mutate it from multiple
// goroutines must synchronize, typically with a sync.RWMutex around mutations
// and matches.
type Trie[V any] struct {
	root *node[V]
	size int
}

// New returns an empty Trie
func New[V any]() *Trie[V] {
	return &Trie[V]{root: newNode[V]()}
}

// Len returns the number of filters in the trie
func (t *Trie[V]) Len() int {
	return t.size
}

// Set stores the value under the filter, replacing any previous value for the
// exact same filter. A segment equal to "+" or "#" is always the wildcard;
// there is no way to store it as a literal.
func (t *Trie[V]) Set(filter string, value V) {
	n := t.root
	for _, part := range strings.Split(filter, topic.Separator) {
		child, ok := n.children[part]
		if !ok {
			child = newNode[V]()
			n.children[part] = child
		}
		n = child
	}
	if n.value == nil {
		t.size++
	}
	n.value = &value
}

// Get returns the value stored under the exact filter. Wildcards in the filter
// are looked up as the literal path segments Set stored them under.
func (t *Trie[V]) Get(filter string) (value V, ok bool) {
	n := t.root
	for _, part := range strings.Split(filter, topic.Separator) {
		if n = n.children[part]; n == nil {
			return value, false
		}
	}
	if n.value == nil {
		return value, false
	}
	return *n.value, true
}

// Delete removes the value stored under the exact filter and prunes nodes that
// are left without values and children. It returns ErrNotFound, without
// mutating the trie, if no value is stored under the filter.
func (t *Trie[V]) Delete(filter string) error {
	parts := strings.Split(filter, topic.Separator)
	path := make([]*node[V], 1, len(parts)+1)
	path[0] = t.root
	n := t.root
	for _, part := range parts {
		if n = n.children[part]; n == nil {
			return ErrNotFound
		}
		path = append(path, n)
	}
	if n.value == nil {
		return ErrNotFound
	}
	n.value = nil
	t.size--
	for i := len(parts); i > 0; i-- {
		n = path[i]
		if n.value != nil || len(n.children) > 0 {
			break
		}
		delete(path[i-1].children, parts[i-1])
	}
	return nil
}

// Match returns the values of all filters that match the topic, in the order
// of MatchFunc.
func (t *Trie[V]) Match(topicName string) []V {
	var matches []V
	t.MatchFunc(topicName, func(value V) bool {
		matches = append(matches, value)
		return true
	})
	return matches
}

// MatchFunc calls f with the value of every filter that matches the topic,
// stopping early if f returns false.
func (t *Trie[V]) MatchFunc(topicName string, f func(value V) bool) {
	t.MatchPath(strings.Split(topicName, topic.Separator), f)
}

// MatchPath is MatchFunc for a separated topic.
//
// At every level the literal segment is tried first, then "+", and finally a
// "#" child terminates the match. Wildcards do not match the first segment of
// a topic that starts with "$", but do match "$" at deeper levels.
func (t *Trie[V]) MatchPath(topicPath []string, f func(value V) bool) {
	if len(topicPath) == 0 {
		return
	}
	normal := !strings.HasPrefix(topicPath[0], topic.InternalPrefix)
	t.root.match(topicPath, 0, normal, f)
}

func (n *node[V]) match(topicPath []string, i int, normal bool, f func(value V) bool) bool {
	if i == len(topicPath) {
		if n.value != nil && !f(*n.value) {
			return false
		}
	} else {
		if child := n.children[topicPath[i]]; child != nil {
			if !child.match(topicPath, i+1, normal, f) {
				return false
			}
		}
		if child := n.children[topic.PartWildcard]; child != nil && (normal || i > 0) {
			if !child.match(topicPath, i+1, normal, f) {
				return false
			}
		}
	}
	// "#" matches the remaining segments, zero included
	if child := n.children[topic.Wildcard]; child != nil && (normal || i > 0) {
		if child.value != nil && !f(*child.value) {
			return false
		}
	}
	return true
}

// Walk calls f with every filter and its value, stopping early if f returns
// false. The order of filters is undefined.
func (t *Trie[V]) Walk(f func(filter string, value V) bool) {
	t.root.walk(nil, f)
}

func (n *node[V]) walk(path []string, f func(filter string, value V) bool) bool {
	if n.value != nil && !f(topic.Join(path), *n.value) {
		return false
	}
	for part, child := range n.children {
		if !child.walk(append(path, part), f) {
			return false
		}
	}
	return true
}
