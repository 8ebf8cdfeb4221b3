package comms

import (
	"fmt"
)

// Send pushes the file at path to the server at address using the full
// protocol: request, filename, body, Goodbye. A refused request still ends
// with an orderly Goodbye.
func Send(address, path string, opts Options) error {
	client := NewClient(opts)
	if err := client.LoadFile(path); err != nil {
		return err
	}

	connected, err := client.Connect(address)
	if err != nil {
		client.Close()
		return fmt.Errorf("unable to connect: %w", err)
	}

	negotiating, err := connected.Request()
	if err != nil {
		connected.Goodbye().Close()
		return err
	}

	sending, denied := negotiating.AwaitAccept()
	if denied != nil {
		reason := denied.Err
		denied.Goodbye().Close()
		return fmt.Errorf("disconnected, the server did not accept our request: %w", reason)
	}

	if err := sending.StreamFile(); err != nil {
		sending.Close()
		return err
	}

	connected, err = sending.Finish()
	if err != nil {
		// One more try before giving up on the connection.
		if connected, err = sending.Finish(); err != nil {
			sending.Close()
			return err
		}
	}

	session := connected.session
	session.log.Println("Closing connection")
	disconnected := connected.Goodbye()
	if disconnected.Err != nil {
		session.log.Println("Disconnected without a Goodbye from server:", disconnected.Err)
	}
	return disconnected.Close()
}
