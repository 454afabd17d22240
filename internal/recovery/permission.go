package recovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/fileutil"
)

// PermissionStrategy works around a permission-denied source by copying it
// into a temporary location with relaxed permissions and retargeting the
// context at the copy.
type PermissionStrategy struct{}

func (PermissionStrategy) Name() string  { return "permission" }
func (PermissionStrategy) Priority() int { return priorityPermission }

// CanHandle matches permission-category records with a file path present.
func (PermissionStrategy) CanHandle(rec *diagnostic.Record, ctx *Context) bool {
	if ctx == nil || ctx.FilePath == "" {
		return false
	}
	if rec.Category == diagnostic.CategoryPermission {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Message), "permission denied")
}

// Attempt copies the target into a temporary file. If the copy itself
// fails, it falls back to reading the original directly and writing the
// content out. Fails only when both paths fail.
func (s PermissionStrategy) Attempt(rec *diagnostic.Record, ctx *Context) Outcome {
	ext := strings.TrimPrefix(filepath.Ext(ctx.FilePath), ".")
	if ext == "" {
		ext = "txt"
	}

	tmp, err := os.CreateTemp("", "kumihan-perm-*."+ext)
	if err != nil {
		return Failuref("creating temporary copy: %v", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return Failuref("closing temporary copy: %v", err)
	}

	if copyErr := fileutil.CopyFile(ctx.FilePath, tmpPath, 0o600); copyErr != nil {
		// Fallback: a direct read may still be permitted even when the
		// copy path failed (e.g. the destination open raced a chmod).
		data, readErr := os.ReadFile(ctx.FilePath) // #nosec G304
		if readErr != nil {
			_ = os.Remove(tmpPath)
			return Failuref("copy failed (%v) and direct read failed (%v)", copyErr, readErr)
		}
		if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
			_ = os.Remove(tmpPath)
			return Failuref("writing fallback copy: %v", writeErr)
		}
	}

	ctx.FilePath = tmpPath
	return Successf("processing continues from readable copy %s", tmpPath)
}
