// Package han implements the client side of the HAN server protocol, the
// line-oriented text protocol the base station daemon exposes over UDP.
//
// A message is a CRLF-separated block: an optional bracketed service line
// ("[HAN]", "[SRV]", "[DBG]", "[CALL]"), a message name, indented
// "KEY: VALUE" parameter lines, and a blank terminator. Structured replies
// like the device table flatten a device/unit/interface tree into that
// parameter list; the decoders in this package rebuild the tree.
package han
