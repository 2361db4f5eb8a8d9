//go:build rewinddebug

package timeline

// strictOrdering makes ordering violations fatal in debug builds.
const strictOrdering = true
