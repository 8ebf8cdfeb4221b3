package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fshare/client/comms"
	"fshare/constants"
	"fshare/fileio"
	"fshare/networking"
	server "fshare/server/controller"

	"github.com/akamensky/argparse"
)

func main() {
	args := argparse.NewParser("fshare", constants.Title)

	client := args.NewCommand("client", "Run the client to send files to an fshare server")
	address := client.StringPositional(&argparse.Options{Required: true, Help: "Address of the remote fshare server"})
	file := client.StringPositional(&argparse.Options{Required: true, Help: "Relative or absolute path to the file to send"})
	clientDSCP := client.Int("d", "dscp", &argparse.Options{Required: false, Help: "DSCP field for QoS",
		Default: constants.DEFAULT_DSCP})
	clientMPTCP := client.Flag("m", "mptcp", &argparse.Options{Help: "Enable Multipath TCP"})
	clientQuiet := client.Flag("q", "quiet", &argparse.Options{Help: "Do not show a progress bar"})

	srv := args.NewCommand("server", "Run the server to receive files from an fshare client")
	directory := srv.StringPositional(&argparse.Options{Required: false, Help: "Directory in which to store received files",
		Default: constants.DEFAULT_DIRECTORY})
	bind := srv.String("a", "address", &argparse.Options{Required: false, Help: "Address to bind the server to",
		Default: constants.DEFAULT_ADDRESS})
	serverDSCP := srv.Int("d", "dscp", &argparse.Options{Required: false, Help: "DSCP field for QoS",
		Default: constants.DEFAULT_DSCP})
	serverMPTCP := srv.Flag("m", "mptcp", &argparse.Options{Help: "Enable Multipath TCP"})
	announce := srv.Flag("n", "announce", &argparse.Options{Help: "Announce the server on the local network over mDNS"})
	serverQuiet := srv.Flag("q", "quiet", &argparse.Options{Help: "Do not show progress bars"})

	err := args.Parse(os.Args)

	if err != nil {
		fmt.Print(args.Usage(err))
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	switch {
	case client.Happened():
		opts := comms.Options{
			Socket: networking.SocketOptions{DSCP: *clientDSCP, MPTCP: *clientMPTCP},
			Logger: logger,
		}
		if !*clientQuiet {
			opts.Progress = fileio.NewProgressBar(os.Stderr)
		}
		if err := comms.Send(*address, *file, opts); err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		fmt.Println("Disconnected")

	case srv.Happened():
		opts := server.Options{
			Socket:   networking.SocketOptions{DSCP: *serverDSCP, MPTCP: *serverMPTCP},
			Logger:   logger,
			Announce: *announce,
		}
		if !*serverQuiet {
			opts.Progress = fileio.NewProgressBar(os.Stderr)
		}
		builder := server.NewBuilder(opts)
		if err := builder.Directory(*directory); err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		s, err := builder.Build()
		if err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if err := s.StartListening(ctx, *bind); err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		fmt.Println("Server stopped")
	}
}
