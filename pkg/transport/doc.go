// Package transport provides the concrete links the protocol clients run
// over: a serial port for the CMBS and CMND binary protocols and a
// connected UDP socket for the HAN text protocol. Both satisfy
// proto.Transport.
package transport
