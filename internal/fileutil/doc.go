// Package fileutil writes files so readers never observe a partial result.
package fileutil
