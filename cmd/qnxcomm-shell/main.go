// Command qnxcomm-shell drives a single in-process Registry through one
// Send/Receive/Reply round trip and a pulse delivery, printing bytes
// copied along the way. There is no kernel module behind it: it exists
// for manual smoke-testing of the core without a driver to load.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	qnxcomm "github.com/abilashjram/qnxcomm"
	"github.com/abilashjram/qnxcomm/internal/logging"
)

func main() {
	var (
		verbose   = flag.Bool("v", false, "Verbose output")
		timeoutMS = flag.Int("timeout", 2000, "Send/Receive timeout in milliseconds")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := qnxcomm.DefaultOptions()
	opts.Logger = logger
	reg := qnxcomm.NewRegistry(opts)

	// unix.Gettid gives the demo's two sides distinct, real OS-level
	// identities rather than arbitrary made-up numbers.
	serverPid := int32(unix.Gettid())
	clientPid := serverPid + 1

	server, err := reg.Open(serverPid)
	if err != nil {
		log.Fatalf("open server: %v", err)
	}
	defer reg.Close(server)

	client, err := reg.Open(clientPid)
	if err != nil {
		log.Fatalf("open client: %v", err)
	}
	defer reg.Close(client)

	chid, err := server.ChannelCreate(0)
	if err != nil {
		log.Fatalf("ChannelCreate: %v", err)
	}
	defer server.ChannelDestroy(chid)

	coid, err := client.ConnectAttach(serverPid, chid)
	if err != nil {
		log.Fatalf("ConnectAttach: %v", err)
	}
	defer client.ConnectDetach(coid)

	done := make(chan struct{})
	go func() {
		defer close(done)
		status, n, err := client.MsgSend(ctx, coid, []byte("ping"), make([]byte, 16), *timeoutMS)
		if err != nil {
			fmt.Printf("MsgSend failed: %v\n", err)
			return
		}
		fmt.Printf("MsgSend returned status=%d bytes=%d\n", status, n)
	}()

	in := make([]byte, 16)
	info, rcvid, n, err := server.MsgReceive(ctx, chid, in, *timeoutMS)
	if err != nil {
		log.Fatalf("MsgReceive: %v", err)
	}
	fmt.Printf("MsgReceive: rcvid=%d from pid=%d bytes=%d payload=%q\n", rcvid, info.SenderPid, n, in[:n])

	if err := server.MsgReply(rcvid, 0, []byte("pong")); err != nil {
		log.Fatalf("MsgReply: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Duration(*timeoutMS) * time.Millisecond):
		fmt.Println("timed out waiting for sender goroutine")
	}

	if err := client.MsgSendPulse(coid, 1, 42); err != nil {
		log.Fatalf("MsgSendPulse: %v", err)
	}
	pulseInfo, pulseRcvid, _, err := server.MsgReceive(ctx, chid, in, *timeoutMS)
	if err != nil {
		log.Fatalf("MsgReceive(pulse): %v", err)
	}
	fmt.Printf("MsgReceive: pulse rcvid=%d (expect 0) from pid=%d\n", pulseRcvid, pulseInfo.SenderPid)

	fmt.Println("round trip complete, press Ctrl+C to exit")
	<-ctx.Done()
	os.Exit(0)
}
