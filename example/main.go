package main

import (
	"fmt"

	"github.com/kvsnap/mmkv"
)

func main() {
	db, err := mmkv.Open("settings")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	db.SetString("username", "alice")
	if name, ok := db.GetString("username"); ok {
		fmt.Println("username:", name)
	}

	db.SetInt32("retries", 3)
	fmt.Println("retries:", db.GetInt32("retries", 0))

	db.SetStringSlice("recent_files", []string{"a.txt", "b.txt"})
	if recent, ok := db.GetVector("recent_files"); ok {
		fmt.Println("recent files:", recent)
	}

	db.RemoveValueForKey("retries")
	fmt.Println("retries present:", db.ContainsKey("retries"))

	fmt.Println("keys:", db.AllKeys())
	fmt.Println("count:", db.Count(), "actual size:", db.ActualSize(), "total size:", db.TotalSize())
}
