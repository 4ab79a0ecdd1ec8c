// Command mmkvtool is a small interactive REPL for inspecting and editing
// a store directly, since the store embeds in-process and has no server mode.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kvsnap/mmkv"
)

func main() {
	id := flag.String("id", "mmkvtool", "mmapID of the store to open")
	dir := flag.String("dir", "", "directory the store lives under (default: package root)")
	cryptKey := flag.String("crypt-key", "", "AES crypt key (empty for plaintext)")
	multiProcess := flag.Bool("multi-process", false, "enable the inter-process lock")
	flag.Parse()

	opts := []mmkv.Option{}
	if *dir != "" {
		opts = append(opts, mmkv.WithRelativePath(*dir))
	}
	if *cryptKey != "" {
		opts = append(opts, mmkv.WithCryptKey(*cryptKey))
	}
	if *multiProcess {
		opts = append(opts, mmkv.WithMode(mmkv.MultiProcess))
	}

	db, err := mmkv.Open(*id, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	fmt.Printf("opened %q (%d live keys, %d bytes payload)\n", *id, db.Count(), db.ActualSize())
	fmt.Println("commands: get <key> | set <key> <value> | del <key> | keys | count | sync | exit")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, " ", 3)
		switch fields[0] {
		case "exit", "quit":
			return
		case "get":
			if len(fields) < 2 {
				fmt.Println("usage: get <key>")
				continue
			}
			v, ok := db.GetString(fields[1])
			if !ok {
				fmt.Println("(not found)")
				continue
			}
			fmt.Println(v)
		case "set":
			if len(fields) < 3 {
				fmt.Println("usage: set <key> <value>")
				continue
			}
			if !db.SetString(fields[1], fields[2]) {
				fmt.Println("set failed")
			}
		case "del":
			if len(fields) < 2 {
				fmt.Println("usage: del <key>")
				continue
			}
			db.RemoveValueForKey(fields[1])
		case "keys":
			for _, k := range db.AllKeys() {
				fmt.Println(k)
			}
		case "count":
			fmt.Println(db.Count())
		case "sync":
			if err := db.Sync(false); err != nil {
				fmt.Println("sync error:", err)
			}
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}
