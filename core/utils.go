package core

import (
	"errors"
	"net"
)

func isIPv4(ip net.IP) bool {
	return ip.To4() != nil
}

// isTimeout returns whether err comes from an expired read deadline.
func isTimeout(err error) bool {
	var neterr net.Error
	return errors.As(err, &neterr) && neterr.Timeout()
}
