package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error feedback shown on buttons
	"error.generic":     "❌ Failed",
	"error.extract":     "❌ No track data found",
	"error.clipboard":   "❌ Copy failed",
	"error.storage":     "❌ Could not save",
	"error.unsupported": "❌ Nothing to export here",

	// Settings validation
	"error.validation.command_empty":   "❌ Command name cannot be empty",
	"error.validation.per_line_range":  "❌ Commands per line must be between %d and %d",
	"error.validation.separator_empty": "❌ Separator cannot be empty",

	// Confirmation prompts
	"prompt.batch_warning": "⚠️ Warning: Found exactly %d tracks.\n\n" +
		"SoundCloud loads tracks in batches (typically %s at a time). " +
		"You might not have loaded all tracks yet!\n\n" +
		"To load more:\n" +
		"1. Scroll down to the bottom of the list\n" +
		"2. Wait for more tracks to load\n" +
		"3. %s this button again\n\n" +
		"Do you want to %s the current %d tracks anyway?",
	"prompt.reset_settings": "Are you sure you want to reset all settings to defaults?",

	// Button labels
	"button.playlist_label":   "Sets info",
	"button.song_label":       "Song info",
	"button.row_label":        "Copy",
	"button.tooltip":          "%s\n\nClick: Copy JSON\nLong-press: Copy batch script\nShift+Click: %s",
	"button.shift_settings":   "Settings",
	"button.shift_collection": "Add to collection",

	// Format helpers
	"format.action_export":      "export",
	"format.action_export_urls": "export URLs for",
	"format.gesture_click":      "Click",
	"format.gesture_long_press": "Long-press",
	"format.batch_sizes_join":   " or ",

	// Success feedback
	"success.copied_json":    "✅ Copied %d tracks",
	"success.copied_script":  "✅ Copied script for %d tracks",
	"success.copied_list":    "✅ Copied %d URLs",
	"success.added":          "✅ Added to collection",
	"success.settings_saved": "✅ Settings saved successfully!",
	"success.settings_reset": "🔄 Settings reset to defaults",

	// Warnings
	"warning.duplicate":        "⚠️ Already in collection",
	"warning.cancelled":        "⚠️ Cancelled",
	"warning.too_many_presses": "⚠️ Too many presses, wait a moment",
}
