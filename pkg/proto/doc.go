// Package proto holds the pieces shared by all three ULE protocol engines
// (HAN, CMBS, CMND): the error taxonomy and the transport contract their
// clients are built on.
package proto
