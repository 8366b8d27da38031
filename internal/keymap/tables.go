package keymap

// Values are X keysym names as listed in X11/keysymdef.h and XF86keysym.h.
var ansiKeys = map[string]string{
	"A": "a", "B": "b", "C": "c", "D": "d", "E": "e",
	"F": "f", "G": "g", "H": "h", "I": "i", "J": "j",
	"K": "k", "L": "l", "M": "m", "N": "n", "O": "o",
	"P": "p", "Q": "q", "R": "r", "S": "s", "T": "t",
	"U": "u", "V": "v", "W": "w", "X": "x", "Y": "y",
	"Z": "z",

	"0": "0", "1": "1", "2": "2", "3": "3", "4": "4",
	"5": "5", "6": "6", "7": "7", "8": "8", "9": "9",

	"Equal":        "equal",
	"Minus":        "minus",
	"RightBracket": "bracketright",
	"LeftBracket":  "bracketleft",
	"Quote":        "apostrophe",
	"Semicolon":    "semicolon",
	"Backslash":    "backslash",
	"Comma":        "comma",
	"Slash":        "slash",
	"Period":       "period",
	"Grave":        "grave",

	"KeypadDecimal":  "KP_Decimal",
	"KeypadMultiply": "KP_Multiply",
	"KeypadPlus":     "KP_Add",
	"KeypadClear":    "Clear",
	"KeypadDivide":   "KP_Divide",
	"KeypadEnter":    "KP_Enter",
	"KeypadMinus":    "KP_Subtract",
	"KeypadEquals":   "KP_Equal",
	"Keypad0":        "KP_0",
	"Keypad1":        "KP_1",
	"Keypad2":        "KP_2",
	"Keypad3":        "KP_3",
	"Keypad4":        "KP_4",
	"Keypad5":        "KP_5",
	"Keypad6":        "KP_6",
	"Keypad7":        "KP_7",
	"Keypad8":        "KP_8",
	"Keypad9":        "KP_9",
}

var specialKeys = map[string]string{
	"Return":        "Return",
	"Tab":           "Tab",
	"Space":         "space",
	"Delete":        "BackSpace",
	"Escape":        "Escape",
	"Command":       "Super_L",
	"Shift":         "Shift_L",
	"CapsLock":      "Caps_Lock",
	"Option":        "Alt_L",
	"Control":       "Control_L",
	"RightCommand":  "Super_R",
	"RightShift":    "Shift_R",
	"RightOption":   "Alt_R",
	"RightControl":  "Control_R",
	"Function":      "Mode_switch",
	"VolumeUp":      "XF86AudioRaiseVolume",
	"VolumeDown":    "XF86AudioLowerVolume",
	"Mute":          "XF86AudioMute",
	"Help":          "Help",
	"Home":          "Home",
	"PageUp":        "Prior",
	"ForwardDelete": "Delete",
	"End":           "End",
	"PageDown":      "Next",
	"LeftArrow":     "Left",
	"RightArrow":    "Right",
	"DownArrow":     "Down",
	"UpArrow":       "Up",

	"F1": "F1", "F2": "F2", "F3": "F3", "F4": "F4", "F5": "F5",
	"F6": "F6", "F7": "F7", "F8": "F8", "F9": "F9", "F10": "F10",
	"F11": "F11", "F12": "F12", "F13": "F13", "F14": "F14", "F15": "F15",
	"F16": "F16", "F17": "F17", "F18": "F18", "F19": "F19", "F20": "F20",
}
