// Package cmbs implements the CMBS serial protocol spoken by ULE base
// stations.
//
// CMBS packets are little-endian: a four-byte 0xDADADADA sync marker, a
// packet header carrying total length, packet number, event id and payload
// length, then a payload of information elements with two-byte types and
// lengths. Trailing checksums are negotiated off during the hello
// handshake.
//
// Besides events, the id space above CommandBase carries transport-control
// commands such as the hello and capabilities exchange.
package cmbs
