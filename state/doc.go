// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the storage slots of the native contracts.
// It follows the flow as bellow:
//
//	          o
//	          |
//	[ revertable state ]
//	          |
//	  [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv bulk ]
//	          |
//	   [ kv getter ]
//
// Contract events are journaled next to storage writes, so reverting to a
// checkpoint drops both.
package state
