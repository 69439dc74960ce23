// Package cmnd implements the CMND serial protocol spoken by ULE device
// modules.
//
// CMND frames use network byte order throughout: a 0xDADA sync marker, a
// length field, a fixed envelope of cookie, unit, service and message
// identifiers, an additive 8-bit checksum, and a payload of information
// elements. Information elements carry a one-byte type and a two-byte
// length.
//
// Client owns the serial link. Request/response operations like GetParam
// block until the response message for their (service, message) pair
// arrives; unsolicited indications go to subscribers.
package cmnd
