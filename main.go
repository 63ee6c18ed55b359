package main

import "github.com/Mohsinsiddi/nftlend/cmd"

func main() {
	cmd.Execute()
}
