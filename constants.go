package gvnc

// Encoding identifies an RFB rectangle encoding or pseudo-encoding, as
// signed 32-bit integers on the wire.
type Encoding int32

const (
	EncodingRaw       Encoding = 0
	EncodingCopyRect  Encoding = 1
	EncodingRRE       Encoding = 2
	EncodingCoRRE     Encoding = 4
	EncodingHextile   Encoding = 5
	EncodingTight     Encoding = 7
	EncodingZRLE      Encoding = 16
	EncodingTightJPEG0 Encoding = -32
	EncodingTightJPEG9 Encoding = -23

	EncodingDesktopResize  Encoding = -223
	EncodingWMVi           Encoding = 0x574D5669
	EncodingCursorPos      Encoding = -232
	EncodingRichCursor     Encoding = -239
	EncodingXCursor        Encoding = -240
	EncodingPointerChange  Encoding = -257
	EncodingExtKeyEvent    Encoding = -258
)

// defaultEncodingOrder is the client's advertised encoding preference,
// highest-preference first, absent any host override. ZRLE is omitted
// here whenever the negotiated server format trips the RealVNC depth-32
// workaround; see sendSetEncodings.
var defaultEncodingOrder = []Encoding{
	EncodingTight,
	EncodingZRLE,
	EncodingHextile,
	EncodingRRE,
	EncodingCopyRect,
	EncodingRaw,
	EncodingDesktopResize,
	EncodingWMVi,
	EncodingRichCursor,
	EncodingXCursor,
	EncodingPointerChange,
	EncodingExtKeyEvent,
}

// AuthType identifies an RFB security/authentication type.
type AuthType uint32

const (
	AuthInvalid  AuthType = 0
	AuthNone     AuthType = 1
	AuthVNC      AuthType = 2
	AuthRA2      AuthType = 5
	AuthRA2ne    AuthType = 6
	AuthTight    AuthType = 16
	AuthUltra    AuthType = 17
	AuthTLS      AuthType = 18
	AuthVeNCrypt AuthType = 19
	AuthSASL     AuthType = 20
	AuthMSLogon  AuthType = 0xFFFFFFFA
	AuthARD      AuthType = 30 // vendor-assigned; Apple Remote Desktop.
)

// VeNCryptSubType identifies a VeNCrypt sub-type.
type VeNCryptSubType uint32

const (
	VeNCryptPlain     VeNCryptSubType = 256
	VeNCryptTLSNone   VeNCryptSubType = 257
	VeNCryptTLSVNC    VeNCryptSubType = 258
	VeNCryptTLSPlain  VeNCryptSubType = 259
	VeNCryptX509None  VeNCryptSubType = 260
	VeNCryptX509VNC   VeNCryptSubType = 261
	VeNCryptX509Plain VeNCryptSubType = 262
	VeNCryptX509SASL  VeNCryptSubType = 263
	VeNCryptTLSSASL   VeNCryptSubType = 264
)

// defaultAuthPreference is the host-overridable preference order used
// when the server offers more than one acceptable auth type.
var defaultAuthPreference = []AuthType{
	AuthVeNCrypt,
	AuthTLS,
	AuthSASL,
	AuthMSLogon,
	AuthARD,
	AuthVNC,
	AuthNone,
}

// Client -> server message types.
const (
	cmdSetPixelFormat           = 0
	cmdSetEncodings             = 2
	cmdFramebufferUpdateRequest = 3
	cmdKeyEvent                 = 4
	cmdPointerEvent             = 5
	cmdClientCutText            = 6
	cmdExtendedKeyEvent         = 255 // QEMU extended key event, sent only after the server advertises the ext-key-event pseudo-encoding (see ExtendedKeyEvent).
)

// Server -> client message types.
const (
	msgFramebufferUpdate  = 0
	msgSetColorMapEntries = 1
	msgBell               = 2
	msgServerCutText      = 3
)

const (
	maxServerCutTextLength = 32 * 1024 * 1024 // reject a ServerCutText payload larger than this.
	maxAuthFailureReason   = 1023
	maxDesktopNameLength   = 4096
	maxSASLMechanismList   = 300
)

// supportedVersions lists the protocol versions supported, in ascending order; the client clamps a
// server offer to the nearest of these.
var supportedVersions = [][2]int{{3, 3}, {3, 7}, {3, 8}}
