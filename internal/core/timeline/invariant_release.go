//go:build !rewinddebug

package timeline

const strictOrdering = false
