package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Error feedback shown on buttons
	"error.generic":     "❌ Het nid funktioniert",
	"error.extract":     "❌ Kei Track-Date gfunde",
	"error.clipboard":   "❌ Kopiere isch schief gloffe",
	"error.storage":     "❌ Ha's nid chönne speichere",
	"error.unsupported": "❌ Hie git's nüt z'exportiere",

	// Settings validation
	"error.validation.command_empty":   "❌ Dr Befählsname darf nid läär sii",
	"error.validation.per_line_range":  "❌ Befähle pro Zile müesse zwüsche %d und %d sii",
	"error.validation.separator_empty": "❌ Dr Trenner darf nid läär sii",

	// Confirmation prompts
	"prompt.batch_warning": "⚠️ Achtung: Gnau %d Tracks gfunde.\n\n" +
		"SoundCloud ladet Tracks i Päckli (meischtens %s ufs Mau). " +
		"Villech sy no nid aui Tracks glade!\n\n" +
		"Für meh z'lade:\n" +
		"1. Bis zunderscht abe scrolle\n" +
		"2. Warte bis meh Tracks glade sy\n" +
		"3. %s dä Chnopf nomau\n\n" +
		"Wosch d aktuelle Tracks trotzdem %s (%d Stück)?",
	"prompt.reset_settings": "Wosch würklech aui Iistellige zrüggsetze?",

	// Button labels
	"button.playlist_label":   "Sets info",
	"button.song_label":       "Song info",
	"button.row_label":        "Kopiere",
	"button.tooltip":          "%s\n\nKlick: JSON kopiere\nLang drücke: Skript kopiere\nShift+Klick: %s",
	"button.shift_settings":   "Iistellige",
	"button.shift_collection": "Zur Sammlig hinzuefüege",

	// Format helpers
	"format.action_export":      "exportiere",
	"format.action_export_urls": "d URLs exportiere vo",
	"format.gesture_click":      "Klick",
	"format.gesture_long_press": "Drück lang uf",
	"format.batch_sizes_join":   " oder ",

	// Success feedback
	"success.copied_json":    "✅ %d Tracks kopiert",
	"success.copied_script":  "✅ Skript für %d Tracks kopiert",
	"success.copied_list":    "✅ %d URLs kopiert",
	"success.added":          "✅ Zur Sammlig hinzuegfüegt",
	"success.settings_saved": "✅ Iistellige gspeicheret!",
	"success.settings_reset": "🔄 Iistellige zrüggsetzt",

	// Warnings
	"warning.duplicate":        "⚠️ Isch scho i dr Sammlig",
	"warning.cancelled":        "⚠️ Abbroche",
	"warning.too_many_presses": "⚠️ Z vil klickt, wart es Momäntli",
}
