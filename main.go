package main

import "github.com/shouni/blog-insights/cmd"

func main() {
	cmd.Execute()
}
