// Package reconcile computes the exact, minimal set of differences between a
// desired UCI command sequence and the configuration observed on a live
// device. Scalar options are diffed by path, list options element-wise by
// (path, value) pair, and entries that exist only on the device are either
// surfaced as drift or hidden by a retention policy.
package reconcile
