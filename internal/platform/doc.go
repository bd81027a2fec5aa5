// Package platform wraps filesystem operations whose behavior differs by
// operating system. On Windows, Unix permission bits are not applied.
package platform
