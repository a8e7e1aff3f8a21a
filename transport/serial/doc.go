// Package serial provides a serial-port transport for NMEA-0183 instruments
// talking directly over RS-232/RS-422, typically at 4800 baud.
package serial
