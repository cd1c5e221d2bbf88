package ui

// iconBytes is a 16x16 PNG used as the tray icon.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x27, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x18, 0x34, 0x40,
	0xcf, 0xc4, 0xe1, 0x3f, 0x29, 0x78, 0xd4, 0x80, 0x41, 0x6d, 0xc0, 0x9b,
	0xf7, 0x5f, 0xf0, 0x62, 0xda, 0x1b, 0x40, 0x13, 0x2f, 0xd0, 0x27, 0x10,
	0x07, 0x0c, 0x00, 0x00, 0xf1, 0x22, 0x18, 0x51, 0x1f, 0xdd, 0x16, 0x57,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
