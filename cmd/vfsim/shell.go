package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/vfsim/vfsim/config"
	"github.com/vfsim/vfsim/vfs"
)

// runShell drives the simulator interactively, one command per line.
func runShell(sim *vfs.VFS, cfg *config.Config) {
	fmt.Printf("vfsim interactive shell (%s). Type 'help' for commands.\n", sim.Label())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] %s $ ", sim.Label(), sim.CurrentPath())
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return
		case "help":
			printHelp()
		case "pwd":
			fmt.Println(sim.CurrentPath())
		case "ls":
			printListing(sim.ListCurrentDirectory())
		case "cd":
			runMsg(sim.ChangeDirectory(arg(args)))
		case "mkdir":
			runMsg(sim.Create(arg(args), vfs.KindDirectory))
		case "touch":
			runMsg(sim.Create(arg(args), vfs.KindFile))
		case "rm":
			runMsg(sim.Delete(arg(args)))
		case "cat":
			node, err := sim.ReadFile(arg(args))
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(node.Content)
		case "write":
			if len(args) < 1 {
				fmt.Println("usage: write <name> <content...>")
				continue
			}
			runMsg(sim.WriteFile(args[0], strings.Join(args[1:], " ")))
		case "stats":
			printStats(sim)
		case "log":
			n := cfg.JournalTail
			if len(args) > 0 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil {
					fmt.Println("usage: log [n]")
					continue
				}
				n = parsed
			}
			printJournal(sim.JournalTail(n))
		case "clearcache":
			fmt.Println(sim.ClearCache())
		default:
			fmt.Printf("unknown command %q; type 'help'\n", cmd)
		}
	}
}

func arg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runMsg(msg string, err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(msg)
}

func printHelp() {
	fmt.Print(`Commands:
  ls                     list the current directory
  cd <name|..>           change directory
  pwd                    print the current path
  mkdir <name>           create a directory
  touch <name>           create an empty file
  cat <name>             print a file's content
  write <name> <text>    replace a file's content
  rm <name>              delete a file or empty directory
  stats                  show statistics and cache performance
  log [n]                show the last n journal records
  clearcache             empty the dentry and inode caches
  exit                   quit
`)
}

func printListing(nodes []*vfs.Node) {
	for _, n := range nodes {
		if n.IsDir() {
			fmt.Printf("%-10s %-12s %6d  %s  %s\n",
				"dir", fmt.Sprintf("%d items", n.ChildCount()), n.Ino,
				n.Created.Format("2006-01-02 15:04"), n.Name)
		} else {
			fmt.Printf("%-10s %-12s %6d  %s  %s\n",
				"file", humanize.Bytes(uint64(n.Size)), n.Ino,
				n.Created.Format("2006-01-02 15:04"), n.Name)
		}
	}
}

func printStats(sim *vfs.VFS) {
	stats := sim.Stats()
	dentries, inodes := sim.CacheSizes()
	fmt.Printf("files: %d  dirs: %d  operations: %d\n", stats.TotalFiles, stats.TotalDirs, stats.Operations)
	fmt.Printf("cache hits: %d  misses: %d  hit rate: %.1f%%\n", stats.CacheHits, stats.CacheMisses, stats.HitRate()*100)
	fmt.Printf("cached dentries: %d  cached inodes: %d\n", dentries, inodes)
}

func printJournal(ops []vfs.Operation) {
	for _, op := range ops {
		status := "ok"
		if !op.Success {
			status = "fail"
		}
		fmt.Printf("[%s] %-4s %-11s %s\n", op.Time.Format("15:04:05.000"), status, op.Kind, op.Path)
	}
}
