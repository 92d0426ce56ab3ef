// Package ordering defines the display-order comparison shared by catalog
// listings and the content tree.
//
// Items sort by ascending numeric display order. Equal orders fall back to
// slug ascending so that every listing is deterministic even when authors
// reuse an order value.
package ordering

import "strings"

// Compare orders (orderA, slugA) against (orderB, slugB). It returns a
// negative value when A sorts first, positive when B sorts first, and zero
// when both order and slug are equal.
func Compare(orderA int, slugA string, orderB int, slugB string) int {
	if orderA != orderB {
		if orderA < orderB {
			return -1
		}
		return 1
	}
	return strings.Compare(slugA, slugB)
}
