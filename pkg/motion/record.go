package motion

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Channels is the number of int16 channels in one record.
	Channels = 6
	// RecordSize is the encoded size of one record in bytes.
	RecordSize = Channels * 2
)

// Channel selects one column of a record.
type Channel int

const (
	AX Channel = iota
	AY
	AZ
	GX
	GY
	GZ
)

var channelNames = [Channels]string{"ax", "ay", "az", "gx", "gy", "gz"}

// ErrUnknownChannel is returned by ParseChannel for names outside ax..gz.
var ErrUnknownChannel = errors.New("unknown channel")

// AllChannels lists every channel in record order.
func AllChannels() []Channel {
	return []Channel{AX, AY, AZ, GX, GY, GZ}
}

// Valid reports whether c names one of the record's channels.
func (c Channel) Valid() bool {
	return c >= 0 && int(c) < Channels
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel converts a name like "ax" or "GZ" into a Channel.
func ParseChannel(name string) (Channel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownChannel, name, strings.Join(channelNames[:], ", "))
}

// Record is one accelerometer/gyroscope reading: ax, ay, az, gx, gy, gz.
type Record [Channels]int16

// Get returns the value of channel c. It panics if c is not Valid.
func (r Record) Get(c Channel) int16 {
	return r[c]
}
