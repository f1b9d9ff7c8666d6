// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import "github.com/danielhkuo/pollboard/models"

// BuildThreadTree nests a flat, creation-ordered list of threads under
// their parents and returns the top-level threads. Replies whose parent
// is not in the list are dropped along with their own replies.
func BuildThreadTree(threads []models.DiscussionThread) []*models.ThreadNode {
	nodes := make(map[string]*models.ThreadNode, len(threads))
	for _, t := range threads {
		nodes[t.ID] = &models.ThreadNode{
			DiscussionThread: t,
			Replies:          []*models.ThreadNode{},
		}
	}

	roots := make([]*models.ThreadNode, 0)
	for _, t := range threads {
		node := nodes[t.ID]
		if t.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*t.ParentID]
		if !ok || parent == node {
			continue
		}
		parent.Replies = append(parent.Replies, node)
		parent.ReplyCount++
	}

	return roots
}

// CountThreadNodes counts every node reachable from roots.
func CountThreadNodes(roots []*models.ThreadNode) int {
	n := 0
	for _, node := range roots {
		n += 1 + CountThreadNodes(node.Replies)
	}
	return n
}
